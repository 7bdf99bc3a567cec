package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"snip-go/internal/app"
	"snip-go/internal/config"
	"snip-go/internal/token"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Add", "Search").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// shortID returns the leading segment of a dash-separated identifier, the
// form shown in listings. The full id still resolves.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// readBody returns the document body: the joined args if any were given,
// otherwise everything on stdin.
func readBody(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Reading from stdin; finish with Ctrl-D...")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// promptPassphrase reads a passphrase without echo, twice if confirm is set.
func promptPassphrase(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}

var rootCmd = &cobra.Command{
	Use:   "snip",
	Short: "Personal snippet store with full-text search",
}

// add command
var addCmd = &cobra.Command{
	Use:   "add [TEXT...]",
	Short: "Store a new snippet",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		body, err := readBody(args)
		if err != nil {
			return err
		}

		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.Add(body, name)
		if err != nil {
			return fmt.Errorf("storing snippet: %w", err)
		}

		fmt.Printf("%s  %s\n", shortID(doc.ID.String()), doc.Name)
		return nil
	},
}

// get command
var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print a snippet body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Get")
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Println(doc.Body)
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List snippets in creation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.List()
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("No snippets stored.")
			return nil
		}

		for _, d := range docs {
			fmt.Printf("%-8s  %s  %4dw  %s\n",
				shortID(d.ID.String()),
				d.CreatedAt.Format("2006-01-02 15:04"),
				d.WordCount,
				d.Name,
			)
		}
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search snippets by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Search(strings.Join(args, " "))
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%-8s  %.4f  %s\n", shortID(r.Document.ID.String()), r.Score, r.Document.Name)
			for _, s := range r.Snippets {
				fmt.Printf("    ...%s...\n", s.Text)
			}
		}
		return nil
	},
}

// rename command
var renameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a snippet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rename")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Rename(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Renamed to %s\n", args[1])
		return nil
	},
}

// attachment commands
var attachCmd = &cobra.Command{
	Use:   "attachment",
	Short: "Manage snippet attachments",
	Aliases: []string{
		"attach",
	},
}

var attachAddCmd = &cobra.Command{
	Use:   "add SNIPPET_ID FILE",
	Short: "Attach a file to a snippet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}

		a, err := newApp("Attach")
		if err != nil {
			return err
		}
		defer a.Close()

		att, err := a.Attach(args[0], filepath.Base(args[1]), data)
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s (%d bytes)\n", shortID(att.ID.String()), att.Name, att.Size)
		return nil
	},
}

var attachGetCmd = &cobra.Command{
	Use:   "get ATTACHMENT_ID",
	Short: "Retrieve an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("ReadAttachment")
		if err != nil {
			return err
		}
		defer a.Close()

		att, err := a.ReadAttachment(args[0])
		if err != nil {
			return err
		}

		if output == "-" {
			_, err := os.Stdout.Write(att.Data)
			return err
		}
		if output == "" {
			output = att.Name
		}
		if err := os.WriteFile(output, att.Data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Printf("Wrote %s (%d bytes)\n", output, att.Size)
		return nil
	},
}

var attachLsCmd = &cobra.Command{
	Use:   "ls SNIPPET_ID",
	Short: "List a snippet's attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListAttachments")
		if err != nil {
			return err
		}
		defer a.Close()

		atts, err := a.ListAttachments(args[0])
		if err != nil {
			return err
		}

		if len(atts) == 0 {
			fmt.Println("No attachments.")
			return nil
		}

		for _, att := range atts {
			fmt.Printf("%-8s  %s  %8d  %s\n",
				shortID(att.ID.String()),
				att.CreatedAt.Format("2006-01-02 15:04"),
				att.Size,
				att.Name,
			)
		}
		return nil
	},
}

var attachRmCmd = &cobra.Command{
	Use:   "rm ATTACHMENT_ID",
	Short: "Remove an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveAttachment")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveAttachment(args[0]); err != nil {
			return err
		}

		fmt.Println("Removed.")
		return nil
	},
}

// stem command: tokenizer diagnostics, no database involved.
var stemCmd = &cobra.Command{
	Use:   "stem [TEXT...]",
	Short: "Show the stemmed terms of a text",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readBody(args)
		if err != nil {
			return err
		}

		for _, t := range token.Normalize(text, token.SnowballStemmer{}) {
			fmt.Println(t.Text)
		}
		return nil
	},
}

// split command: word scanner diagnostics, no database involved.
var splitCmd = &cobra.Command{
	Use:   "split [TEXT...]",
	Short: "Show the words of a text",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readBody(args)
		if err != nil {
			return err
		}

		for _, w := range token.Words(text) {
			fmt.Println(w.Text)
		}
		return nil
	},
}

// config commands
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
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Database:      %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Stemmer:       %s\n", cfg.Stemmer.Type)
		fmt.Printf("Context Words: %d\n", cfg.Search.ContextWords)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:         %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate backup encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		passphrase, err := promptPassphrase(true)
		if err != nil {
			return err
		}

		if err := app.SetupKeys(cfg, passphrase); err != nil {
			return err
		}

		fmt.Printf("Keys written to %s and %s\n",
			cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Encrypt and upload a database snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backup(); err != nil {
			return err
		}

		fmt.Println("Backup complete.")
		return nil
	},
}

// restore-db command
var restoreDBCmd = &cobra.Command{
	Use:   "restore-db",
	Short: "Restore the database from the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		passphrase, err := promptPassphrase(false)
		if err != nil {
			return err
		}

		path, err := app.RestoreDatabase(cfg, passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("Database restored to %s\n", path)
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("name", "n", "", "Display name (defaults to the first words of the body)")

	attachCmd.AddCommand(attachAddCmd)
	attachCmd.AddCommand(attachGetCmd)
	attachGetCmd.Flags().StringP("output", "o", "", "Output file ('-' for stdout, default: attachment name)")
	attachCmd.AddCommand(attachLsCmd)
	attachCmd.AddCommand(attachRmCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(stemCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreDBCmd)
}
