package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lsfd202201/internal/app"
	"lsfd202201/internal/config"
	"lsfd202201/internal/database"
	"lsfd202201/internal/site"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates the App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// newStoreForMigration opens the store without the schema check that the
// full app performs on startup.
func newStoreForMigration(cfg *config.Config) (site.Store, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

var rootCmd = &cobra.Command{
	Use:   "lsfd",
	Short: "LSFD202201 class site",
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if routes, _ := cmd.Flags().GetBool("routes"); routes {
			fmt.Println(docgen.MarkdownRoutesDoc(a.Router(), docgen.MarkdownOpts{
				ProjectPath: "lsfd202201",
				Intro:       "Routes of the LSFD202201 class site.",
			}))
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Serve(ctx)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Addr:      %s\n", cfg.Server.Addr)
		fmt.Printf("Diag Addr: %s\n", cfg.Server.DiagAddr)
		fmt.Printf("Database:  %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Mail Host: %s:%d\n", cfg.Mail.Host, cfg.Mail.Port)
		fmt.Printf("Admins:    %v\n", cfg.AdminUsers)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		// app.NewApp refuses to start on an outdated schema, so migration
		// goes straight through the store factory.
		store, err := newStoreForMigration(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.MigrateUp(); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}

		fmt.Println("Database is up to date.")
		return nil
	},
}

// roles command
var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles",
}

var rolesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or reset the canonical role table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		defs := site.DefaultRoleDefinitions()
		if err := a.Service().SeedRoles(cmd.Context(), defs, site.DefaultRoleName); err != nil {
			return fmt.Errorf("seeding roles: %w", err)
		}

		fmt.Printf("Seeded %d role(s), default %q\n", len(defs), site.DefaultRoleName)
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		u, err := a.Service().CreateUser(cmd.Context(), args[0], password, role)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		fmt.Printf("Created user %s (%s)\n", u.Name, u.ID)
		return nil
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password NAME",
	Short: "Replace a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}

		if err := a.Service().SetUserPassword(cmd.Context(), args[0], password); err != nil {
			return fmt.Errorf("setting password: %w", err)
		}

		fmt.Printf("Password updated for %s\n", args[0])
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage encrypted database snapshots",
}

var backupSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the snapshot encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.BackupService()
		if err != nil {
			return err
		}

		passphrase, err := promptPassword("Key passphrase: ")
		if err != nil {
			return err
		}

		if err := svc.Setup(passphrase); err != nil {
			return err
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Snapshot the database to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.BackupService()
		if err != nil {
			return err
		}

		name, err := svc.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Uploaded snapshot %s\n", name)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.BackupService()
		if err != nil {
			return err
		}

		names, err := svc.List()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore NAME DEST",
	Short: "Decrypt a snapshot to a local file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.BackupService()
		if err != nil {
			return err
		}

		passphrase, err := promptPassword("Key passphrase: ")
		if err != nil {
			return err
		}

		if err := svc.Restore(args[0], args[1], passphrase); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("routes", false, "Print the route table as markdown and exit")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	dbCmd.AddCommand(dbMigrateCmd)

	rolesCmd.AddCommand(rolesSeedCmd)

	userCmd.AddCommand(userAddCmd)
	userAddCmd.Flags().String("role", "", "Role name (defaults to the default role)")
	userCmd.AddCommand(userSetPasswordCmd)

	backupCmd.AddCommand(backupSetupCmd)
	backupCmd.AddCommand(backupRunCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(backupCmd)
}
