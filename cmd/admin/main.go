package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	memoryrepo "github.com/edupage-labs/coursevault/pkg/coursevault/repo/memory"
	repopg "github.com/edupage-labs/coursevault/pkg/coursevault/repo/postgres"
)

const usage = `Coursevault Admin CLI

A lightweight admin tool for the portal that only requires database access.

USAGE:
  admin <command> [options]

COMMANDS:
  stats     Show record counts per content kind and role
  list      List content records for one kind
  import    Bulk-register people from a JSON file
  migrate   Apply database migrations (postgres only)

ENVIRONMENT VARIABLES:
  DATABASE_URL      'memory' or a postgresql:// connection string
                    (default: memory)

  Configuration can be loaded from a .env file in the current directory.

EXAMPLES:
  # Show portal statistics
  admin stats
  admin stats --json

  # List question banks for second-year CSE
  admin list --kind=question_bank --year=2 --department=CSE

  # Import students from a file
  admin import --role=student --file=students.json

  # Bring the postgres schema up to date
  admin migrate

OPTIONS:
  --kind=<kind>          material, question_bank or update (list)
  --year=<year>          Filter by year (list)
  --department=<dept>    Filter by department (list)
  --role=<role>          student, faculty or admin (import)
  --file=<path>          JSON file with an array of people (import)
  --json                 Output as JSON
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	dbURL := getEnv("DATABASE_URL", "memory")

	if command == "migrate" {
		handleMigrate(dbURL)
		return
	}

	svc, err := createService(dbURL)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	ctx := context.Background()
	opts := parseOptions(os.Args[2:])

	switch command {
	case "stats":
		handleStats(ctx, svc, opts)
	case "list":
		handleList(ctx, svc, opts)
	case "import":
		handleImport(ctx, svc, opts)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

// createService wires a repository-only service. Admin commands never touch
// blob storage, so no blob store is mounted.
func createService(dbURL string) (coursevault.Service, error) {
	var repo coursevault.Repository

	switch {
	case dbURL == "" || dbURL == "memory":
		repo = memoryrepo.New()
	default:
		pool, err := repopg.Connect(context.Background(), dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo = repopg.NewWithPool(pool)
	}

	return coursevault.New(coursevault.WithRepository(repo))
}

type options struct {
	kind       string
	year       string
	department string
	role       string
	file       string
	useJSON    bool
}

func parseOptions(args []string) options {
	var opts options
	for _, arg := range args {
		if arg == "--json" {
			opts.useJSON = true
			continue
		}
		key, value := parseFlag(arg)
		switch key {
		case "kind":
			opts.kind = value
		case "year":
			opts.year = value
		case "department":
			opts.department = value
		case "role":
			opts.role = value
		case "file":
			opts.file = value
		}
	}
	return opts
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleStats(ctx context.Context, svc coursevault.Service, opts options) {
	stats, err := svc.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("=== Portal Statistics ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Materials\t%d\n", stats.Materials)
	fmt.Fprintf(w, "Question banks\t%d\n", stats.QuestionBanks)
	fmt.Fprintf(w, "Updates\t%d\n", stats.Updates)
	fmt.Fprintf(w, "Students\t%d\n", stats.Students)
	fmt.Fprintf(w, "Faculty\t%d\n", stats.Faculty)
	fmt.Fprintf(w, "Admins\t%d\n", stats.Admins)
	w.Flush()
}

func handleList(ctx context.Context, svc coursevault.Service, opts options) {
	kind := coursevault.ContentKind(opts.kind)
	if !kind.Valid() {
		log.Fatalf("--kind must be material, question_bank or update, got %q", opts.kind)
	}

	records, err := svc.ListContent(ctx, kind, coursevault.ContentFilter{
		Year:       opts.year,
		Department: opts.department,
	})
	if err != nil {
		log.Fatalf("Failed to list content: %v", err)
	}

	if opts.useJSON {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTITLE\tYEAR\tDEPT\tFILE\tCREATED\n")
	for _, record := range records {
		file := record.FileName
		if file == "" {
			file = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			record.ID.String()[:8]+"...",
			truncate(record.Title, 24),
			record.Year,
			record.Department,
			truncate(file, 20),
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d\n", len(records))
}

func handleImport(ctx context.Context, svc coursevault.Service, opts options) {
	role := coursevault.Role(opts.role)
	if !role.Valid() {
		log.Fatalf("--role must be student, faculty or admin, got %q", opts.role)
	}
	if opts.file == "" {
		log.Fatal("--file is required for import")
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", opts.file, err)
	}

	var people []struct {
		UserID     string `json:"user_id"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		Year       string `json:"year"`
		Department string `json:"department"`
		Phone      string `json:"phone"`
	}
	if err := json.Unmarshal(data, &people); err != nil {
		log.Fatalf("Failed to parse %s: %v", opts.file, err)
	}

	reqs := make([]coursevault.AddPersonRequest, 0, len(people))
	for _, p := range people {
		reqs = append(reqs, coursevault.AddPersonRequest{
			Role:       role,
			UserID:     p.UserID,
			Password:   p.Password,
			Name:       p.Name,
			Year:       p.Year,
			Department: p.Department,
			Phone:      p.Phone,
		})
	}

	result, err := svc.BulkAddPeople(ctx, role, reqs)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if opts.useJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Imported %d of %d people\n", result.Added, len(reqs))
	if len(result.Duplicates) > 0 {
		fmt.Printf("Skipped duplicates: %v\n", result.Duplicates)
	}
}

func handleMigrate(dbURL string) {
	if dbURL == "" || dbURL == "memory" {
		log.Fatal("migrate requires a postgresql:// DATABASE_URL")
	}
	if err := repopg.Migrate(dbURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migrations applied")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
