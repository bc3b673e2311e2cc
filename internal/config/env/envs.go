package env

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type values struct {
	SERVER_ADDR                    string
	SERVER_PORT                    int
	REDIS_ADDR                     string
	PAYMENT_PROCESSOR_URL_DEFAULT  string
	PAYMENT_PROCESSOR_URL_FALLBACK string
	WORKER_CONCURRENCY             int
	SUMMARY_SYNC_WRITE             bool
}

var Values = &values{}

// Load carrega o .env (se existir) e preenche a struct Values por reflection:
// o nome do campo é o nome da variável de ambiente. Variável faltando é o
// único erro fatal do processo - ele falha antes de servir tráfego.
func Load() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Aviso: arquivo .env não encontrado. Usando variáveis de ambiente do sistema.")
	}

	v := reflect.ValueOf(Values).Elem()
	t := v.Type()

	var missingVars []string

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		envVarName := fieldType.Name

		envVarValue, ok := os.LookupEnv(envVarName)
		if !ok {
			missingVars = append(missingVars, envVarName)
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(envVarValue)

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			intValue, err := strconv.ParseInt(envVarValue, 10, 64)
			if err != nil {
				return fmt.Errorf("valor inválido para %s: %q não é inteiro", envVarName, envVarValue)
			}
			field.SetInt(intValue)

		case reflect.Bool:
			boolValue, err := strconv.ParseBool(envVarValue)
			if err != nil {
				return fmt.Errorf("valor inválido para %s: %q não é booleano", envVarName, envVarValue)
			}
			field.SetBool(boolValue)
		}
	}

	if len(missingVars) > 0 {
		for i, v := range missingVars {
			missingVars[i] = "- " + v
		}
		details := strings.Join(missingVars, "\n")
		return fmt.Errorf("some environment variables are missing:\n%s", details)
	}

	return nil
}

// ShowEnvValues imprime a configuração carregada, alinhada pelo campo mais longo.
func ShowEnvValues() {
	log.SetPrefix("Env: ")
	log.SetFlags(0)
	defer log.SetPrefix("")
	defer log.SetFlags(log.LstdFlags)

	v := reflect.ValueOf(Values).Elem()
	t := v.Type()

	maxLength := 0
	for i := 0; i < t.NumField(); i++ {
		if len(t.Field(i).Name) > maxLength {
			maxLength = len(t.Field(i).Name)
		}
	}

	format := fmt.Sprintf("%%-%ds: %%v", maxLength)
	for i := 0; i < v.NumField(); i++ {
		log.Printf(format, t.Field(i).Name, v.Field(i).Interface())
	}
}
