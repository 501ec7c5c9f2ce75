package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userprofile/internal/config"
	dto "github.com/dropDatabas3/userprofile/internal/http/dto/profile"
	"github.com/dropDatabas3/userprofile/internal/http/server"
	svc "github.com/dropDatabas3/userprofile/internal/http/services/profile"
	"github.com/dropDatabas3/userprofile/internal/identity"
	"github.com/dropDatabas3/userprofile/internal/identity/appwrite"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		endpoint, project, apiKey string
		out                       = "json"
		timeout                   = 15 * time.Second
		verbose                   bool
	)

	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "CLI para consultar perfiles en el servicio de identidad",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "error"
			if verbose {
				level = "debug"
			}
			logger.Init(logger.Config{Env: "dev", Level: level})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Endpoint de Appwrite (env APPWRITE_FUNCTION_ENDPOINT)")
	root.PersistentFlags().StringVar(&project, "project", "", "Project ID (env APPWRITE_FUNCTION_PROJECT_ID)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (env APPWRITE_FUNCTION_API_KEY)")
	root.PersistentFlags().StringVarP(&out, "out", "o", out, "Formato de salida: json|text")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Timeout por request")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Logs de debug")

	// flags > env/config
	credentials := func() (identity.Credentials, error) {
		cfg, err := config.FromEnv()
		if err != nil {
			return identity.Credentials{}, err
		}
		c := server.Credentials(cfg)
		if endpoint != "" {
			c.Endpoint = endpoint
		}
		if project != "" {
			c.ProjectID = project
		}
		if apiKey != "" {
			c.APIKey = apiKey
		}
		return c, nil
	}

	getCmd := &cobra.Command{
		Use:   "get <userId>",
		Short: "Obtener el perfil normalizado de un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credentials()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			service := svc.NewProfileService(svc.Deps{
				Fetcher:  appwrite.New(appwrite.WithUserAgent("profilectl/1.0")),
				Defaults: creds,
			})
			res, err := service.Get(ctx, dto.ProfileRequest{UserID: args[0]})
			if err != nil {
				return describe(err)
			}
			return printProfile(out, res.ToResponse())
		},
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al servicio de identidad (GET /health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credentials()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := appwrite.New().Health(ctx, creds); err != nil {
				return fmt.Errorf("ping fallo: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	root.AddCommand(getCmd, pingCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// describe agrega el status HTTP que devolvería la función.
func describe(err error) error {
	switch {
	case errors.Is(err, svc.ErrUserNotFound):
		return fmt.Errorf("404 User not found: %w", err)
	case errors.Is(err, svc.ErrUnauthorized):
		return fmt.Errorf("401 Unauthorized: %w", err)
	case errors.Is(err, svc.ErrForbidden):
		return fmt.Errorf("403 Forbidden: %w", err)
	default:
		return fmt.Errorf("500 Internal server error: %w", err)
	}
}

func printProfile(format string, p dto.ProfileResponse) error {
	if format == "text" {
		fmt.Printf("id:        %s\nemail:     %s\nname:      %s\navatarUrl: %s\n", p.ID, p.Email, p.Name, p.AvatarURL)
		return nil
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
