package repositories

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// ChangeFeedRepositoryInterface - общий канал уведомлений между экземплярами сервиса.
type ChangeFeedRepositoryInterface interface {
	Publish(ctx context.Context, message []byte) error
	// Subscribe отдаёт поток сообщений до отмены ctx.
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// RedisChangeFeedRepository - канал уведомлений на Redis pub/sub.
type RedisChangeFeedRepository struct {
	client  *redis.Client
	channel string
}

func NewRedisChangeFeedRepository(client *redis.Client, channel string) ChangeFeedRepositoryInterface {
	return &RedisChangeFeedRepository{client: client, channel: channel}
}

func (r *RedisChangeFeedRepository) Publish(ctx context.Context, message []byte) error {
	return r.client.Publish(ctx, r.channel, message).Err()
}

func (r *RedisChangeFeedRepository) Subscribe(ctx context.Context) (<-chan []byte, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	// дожидаемся подтверждения подписки, иначе первые сообщения можно пропустить
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
