package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hushh-labs/consentcore/internal/bootstrap"
	"github.com/hushh-labs/consentcore/internal/config"
	"github.com/hushh-labs/consentcore/internal/consent/scope"
	"github.com/hushh-labs/consentcore/internal/observability/logger"
	migrations "github.com/hushh-labs/consentcore/migrations/postgres"
)

func main() {
	var (
		cfgPath = envOr("CONSENTCTL_CONFIG", "")
		envFile = envOr("CONSENTCTL_ENV_FILE", ".env")
		out     = envOr("CONSENTCTL_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "consentctl",
		Short: "CLI del core de consentimiento: tokens firmados + vault cifrado",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			logger.Init(logger.Config{
				Env:         envOr("APP_ENV", "dev"),
				Level:       envOr("LOG_LEVEL", "warn"),
				ServiceName: "consentctl",
			})
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "ruta a config.yaml (env CONSENTCTL_CONFIG)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "ruta a .env")
	root.PersistentFlags().StringVar(&out, "out", out, "formato de salida: json|text")

	// ── keygen ──
	root.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Genera una clave maestra (32 bytes, base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(b))
			return nil
		},
	})

	// ── scopes ──
	root.AddCommand(&cobra.Command{
		Use:   "scopes",
		Short: "Lista el catálogo de scopes registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cfgPath)
			if err != nil {
				return err
			}
			for _, s := range reg.List() {
				fmt.Println(s)
			}
			return nil
		},
	})

	// ── issue ──
	var (
		issueUser  string
		issueAgent string
		issueScope string
		issueTTL   time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Emite un consent token firmado",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer core.Close()

			ttl := issueTTL
			if ttl == 0 {
				ttl = core.DefaultTTL()
			}
			tk, err := core.IssueToken(cmd.Context(), issueUser, issueAgent, scope.Scope(issueScope), ttl)
			if err != nil {
				return err
			}
			if out == "json" {
				return printJSON(tk)
			}
			fmt.Println(tk.Raw)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&issueUser, "user", "", "user_id (requerido)")
	issueCmd.Flags().StringVar(&issueAgent, "agent", "", "agent_id (requerido)")
	issueCmd.Flags().StringVar(&issueScope, "scope", "", "scope registrado (requerido)")
	issueCmd.Flags().DurationVar(&issueTTL, "ttl", 0, "TTL del token (default: consent.default_ttl)")
	_ = issueCmd.MarkFlagRequired("user")
	_ = issueCmd.MarkFlagRequired("agent")
	_ = issueCmd.MarkFlagRequired("scope")
	root.AddCommand(issueCmd)

	// ── validate ──
	var (
		valToken string
		valScope string
	)
	valCmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida un token contra un scope esperado",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer core.Close()

			res, err := core.ValidateToken(cmd.Context(), valToken, scope.Scope(valScope))
			if err != nil {
				return err
			}
			if out == "json" {
				return printJSON(res)
			}
			fmt.Printf("valid=%v reason=%s\n", res.Valid, res.Reason)
			if res.Claims != nil {
				fmt.Printf("user=%s agent=%s scope=%s expires=%s\n",
					res.Claims.UserID, res.Claims.AgentID, res.Claims.Scope,
					res.Claims.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	valCmd.Flags().StringVar(&valToken, "token", "", "token firmado (requerido)")
	valCmd.Flags().StringVar(&valScope, "scope", "", "scope esperado (requerido)")
	_ = valCmd.MarkFlagRequired("token")
	_ = valCmd.MarkFlagRequired("scope")
	root.AddCommand(valCmd)

	// ── revoke ──
	var (
		revID     string
		revReason string
	)
	revCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoca un token por token_id (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.RevokeToken(cmd.Context(), revID, revReason); err != nil {
				return err
			}
			fmt.Println("revoked")
			return nil
		},
	}
	revCmd.Flags().StringVar(&revID, "token-id", "", "token_id a revocar (requerido)")
	revCmd.Flags().StringVar(&revReason, "reason", "user_requested", "razón de la revocación")
	_ = revCmd.MarkFlagRequired("token-id")
	root.AddCommand(revCmd)

	// ── encrypt ──
	var (
		encOwner string
		encKeyID string
		encData  string
	)
	encCmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Cifra datos para un usuario y los persiste en el vault",
		Long:  "Lee el plaintext de --data, o de stdin si --data está vacío.",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer core.Close()

			pt := []byte(encData)
			if encData == "" {
				pt, err = io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
			}
			rec, err := core.EncryptData(cmd.Context(), encOwner, encKeyID, pt)
			if err != nil {
				return err
			}
			if out == "json" {
				return printJSON(rec)
			}
			fmt.Println(rec.Compact())
			return nil
		},
	}
	encCmd.Flags().StringVar(&encOwner, "owner", "", "owner_id (requerido)")
	encCmd.Flags().StringVar(&encKeyID, "key-id", "", "key_id del registro (requerido)")
	encCmd.Flags().StringVar(&encData, "data", "", "plaintext; vacío => stdin")
	_ = encCmd.MarkFlagRequired("owner")
	_ = encCmd.MarkFlagRequired("key-id")
	root.AddCommand(encCmd)

	// ── decrypt ──
	var (
		decOwner string
		decKeyID string
	)
	decCmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Recupera y descifra un registro del vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			defer core.Close()

			pt, err := core.DecryptData(cmd.Context(), decOwner, decKeyID)
			if err != nil {
				return err
			}
			_, _ = os.Stdout.Write(pt)
			fmt.Println()
			return nil
		},
	}
	decCmd.Flags().StringVar(&decOwner, "owner", "", "owner_id (requerido)")
	decCmd.Flags().StringVar(&decKeyID, "key-id", "", "key_id del registro (requerido)")
	_ = decCmd.MarkFlagRequired("owner")
	_ = decCmd.MarkFlagRequired("key-id")
	root.AddCommand(decCmd)

	// ── migrate ──
	var migrateDSN string
	migCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones core a Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := migrateDSN
			if dsn == "" {
				dsn = os.Getenv("STORAGE_DSN")
			}
			if dsn == "" {
				return fmt.Errorf("falta DSN (flag --dsn o env STORAGE_DSN)")
			}
			return runMigrations(cmd.Context(), dsn)
		},
	}
	migCmd.Flags().StringVar(&migrateDSN, "dsn", "", "DSN de Postgres (env STORAGE_DSN)")
	root.AddCommand(migCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openCore carga config (claves incluidas, fatal si faltan) y arma el core.
func openCore(ctx context.Context, cfgPath string) (*bootstrap.Core, error) {
	cfg, err := config.Load(resolveConfig(cfgPath))
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}

func loadRegistry(cfgPath string) (*scope.Registry, error) {
	cfg, err := config.LoadWithoutKeys(resolveConfig(cfgPath))
	if err != nil {
		return nil, err
	}
	if len(cfg.Scopes) == 0 {
		return scope.Default(), nil
	}
	names := make([]string, 0, len(cfg.Scopes))
	for _, s := range cfg.Scopes {
		names = append(names, s.Name)
	}
	return scope.NewRegistry(names)
}

func resolveConfig(path string) string {
	if path != "" {
		return path
	}
	if fileExists("configs/config.yaml") {
		return "configs/config.yaml"
	}
	return "configs/config.example.yaml"
}

// runMigrations aplica los .sql embebidos en orden lexicográfico.
func runMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	entries, err := migrations.CoreFS.ReadDir(migrations.CoreDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		b, err := migrations.CoreFS.ReadFile(migrations.CoreDir + "/" + e.Name())
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("migración %s: %w", e.Name(), err)
		}
		fmt.Println("applied", e.Name())
	}
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
