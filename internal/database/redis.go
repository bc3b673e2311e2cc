package database

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	once   sync.Once

	err error
)

// ConnectToRedisClient abre (uma única vez) a conexão com o Redis que guarda
// a fila, o estado dos circuit breakers e os sorted sets do summary.
func ConnectToRedisClient(addr string) (*redis.Client, error) {
	once.Do(func() {
		log.Println("Iniciando conexão com o Redis...")

		if addr == "" {
			err = fmt.Errorf("endereço do Redis não configurado")
			return
		}

		c := redis.NewClient(&redis.Options{
			Addr:         addr,
			PoolSize:     128,
			MinIdleConns: 16,
		})

		pingErr := c.Ping(context.Background()).Err()
		if pingErr != nil {
			err = fmt.Errorf("falha ao conectar com o Redis em %s: %w", addr, pingErr)
			return
		}

		log.Println("Cliente Redis conectado e pronto para uso")
		client = c
	})

	return client, err
}

func CloseRedisClient() {
	if client != nil {
		if err := client.Close(); err != nil {
			log.Printf("Erro ao fechar o cliente Redis: %v", err)
		}
	}
}
