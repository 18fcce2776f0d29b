package mock

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis holds an in-memory Redis server and a client connected to it.
type Redis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// Close releases the client and stops the in-memory server.
func (m Redis) Close() {
	_ = m.Client.Close()
	m.Server.Close()
}

// MustCreateRedisMock starts an in-memory Redis server for tests.
func MustCreateRedisMock() Redis {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return Redis{
		Server: server,
		Client: client,
	}
}
