package helpers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// NewTestRedis starts an in-process Redis server and returns a client
// connected to it. The server and client are torn down with the test.
func NewTestRedis(t *testing.T) *goredis.Client {
	srv := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}
