package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChatLock marks a chat as having a running game so that two bot
// instances never drive the same chat.
type ChatLock struct {
	client *redis.Client
	owner  string
}

// NewChatLock returns a lock whose entries are tagged with owner. Release
// only removes entries this owner set.
func NewChatLock(client *redis.Client, owner string) *ChatLock {
	return &ChatLock{client: client, owner: owner}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *ChatLock) Acquire(ctx context.Context, chatID int64, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key(chatID), l.owner, ttl).Result()
}

func (l *ChatLock) Release(ctx context.Context, chatID int64) error {
	return releaseScript.Run(ctx, l.client, []string{l.key(chatID)}, l.owner).Err()
}

func (l *ChatLock) key(chatID int64) string {
	return "trivia:chat:" + strconv.FormatInt(chatID, 10) + ":lock"
}
