package env

import (
	"os"
	"strings"
	"testing"
)

func setAllVars(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_ADDR", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PAYMENT_PROCESSOR_URL_DEFAULT", "http://localhost:8001")
	t.Setenv("PAYMENT_PROCESSOR_URL_FALLBACK", "http://localhost:8002")
	t.Setenv("WORKER_CONCURRENCY", "20")
	t.Setenv("SUMMARY_SYNC_WRITE", "false")
}

func TestLoadParsesAllFields(t *testing.T) {
	setAllVars(t)
	Values = &values{}

	if err := Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if Values.SERVER_PORT != 9999 {
		t.Errorf("SERVER_PORT = %d, want 9999", Values.SERVER_PORT)
	}
	if Values.REDIS_ADDR != "localhost:6379" {
		t.Errorf("REDIS_ADDR = %q", Values.REDIS_ADDR)
	}
	if Values.WORKER_CONCURRENCY != 20 {
		t.Errorf("WORKER_CONCURRENCY = %d, want 20", Values.WORKER_CONCURRENCY)
	}
	if Values.SUMMARY_SYNC_WRITE {
		t.Error("SUMMARY_SYNC_WRITE = true, want false")
	}
}

func TestLoadReportsMissingVars(t *testing.T) {
	setAllVars(t)
	// t.Setenv registra a restauração; Unsetenv simula a variável ausente.
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")
	Values = &values{}

	err := Load()
	if err == nil {
		t.Fatal("Load should fail with a missing variable")
	}
	if !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Errorf("Error should name the missing variable, got: %v", err)
	}
}

func TestLoadRejectsUnparseableInt(t *testing.T) {
	setAllVars(t)
	t.Setenv("SERVER_PORT", "not-a-port")
	Values = &values{}

	if err := Load(); err == nil {
		t.Fatal("Load should fail on an unparseable int")
	}
}
