package libs

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// GracefulShutdown inicia o servidor HTTP e bloqueia até receber SIGINT ou
// SIGTERM. Primeiro desliga o servidor dentro do timeout, depois chama
// stopWorkers e espera os loops de background retornarem por até um período
// de graça - tarefas de settlement já em voo não são drenadas.
func GracefulShutdown(server *http.Server, timeout time.Duration, stopWorkers func(), workersDone <-chan struct{}) {
	go func() {
		log.Printf("Servidor HTTP escutando em: %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Falha ao iniciar o servidor: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Desligando o servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Erro no desligamento do servidor: %v", err)
	}

	stopWorkers()
	select {
	case <-workersDone:
		log.Println("Workers encerrados.")
	case <-time.After(timeout):
		log.Println("Período de graça expirado, abandonando workers.")
	}

	log.Println("Servidor desligado.")
}
