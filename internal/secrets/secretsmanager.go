// Package secrets resuelve la API key por defecto desde AWS Secrets Manager.
//
// Se usa solo al arrancar (cold start en Lambda): el valor resuelto queda en la
// config del proceso y no se vuelve a consultar.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetSecretValueAPI es el subconjunto del cliente de Secrets Manager que usamos.
type GetSecretValueAPI interface {
	GetSecretValue(ctx context.Context, in *sm.GetSecretValueInput, optFns ...func(*sm.Options)) (*sm.GetSecretValueOutput, error)
}

// ErrEmptySecret: el secreto existe pero no tiene valor usable.
var ErrEmptySecret = errors.New("secrets: empty secret value")

// Resolver lee secretos de texto.
type Resolver struct {
	client GetSecretValueAPI
	// JSONKey: si el secreto es un objeto JSON, campo a extraer.
	JSONKey string
}

// NewResolver crea un Resolver sobre un cliente ya configurado.
func NewResolver(client GetSecretValueAPI) *Resolver {
	return &Resolver{client: client, JSONKey: "apiKey"}
}

// NewDefaultResolver usa la cadena de credenciales por defecto de AWS
// (env, shared config, rol de la Lambda).
func NewDefaultResolver(ctx context.Context) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}
	return NewResolver(sm.NewFromConfig(cfg)), nil
}

// Resolve devuelve el valor del secreto arn.
//
// Acepta texto plano o un objeto JSON con el campo JSONKey
// (ej: {"apiKey":"standard_..."}), que es como la consola guarda pares clave/valor.
func (r *Resolver) Resolve(ctx context.Context, arn string) (string, error) {
	arn = strings.TrimSpace(arn)
	if arn == "" {
		return "", errors.New("secrets: empty secret id")
	}
	out, err := r.client.GetSecretValue(ctx, &sm.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get %s: %w", arn, err)
	}

	v := strings.TrimSpace(aws.ToString(out.SecretString))
	if strings.HasPrefix(v, "{") && r.JSONKey != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			s, _ := m[r.JSONKey].(string)
			v = strings.TrimSpace(s)
		}
	}
	if v == "" {
		return "", ErrEmptySecret
	}
	return v, nil
}
