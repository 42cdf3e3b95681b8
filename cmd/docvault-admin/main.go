// Command docvault-admin bootstraps accounts and demo data directly
// against the configured storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/config"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
	"github.com/platinummonkey/docvault/pkg/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	switch os.Args[1] {
	case "create-admin":
		err = createAdmin(ctx, store, os.Args[2:])
	case "seed":
		err = seed(ctx, store, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: docvault-admin <create-admin|seed> [flags]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "docvault-admin:", err)
	os.Exit(1)
}

func openStore(ctx context.Context) (storage.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Type == "postgres" {
		return postgres.New(ctx, cfg.Storage.PostgresURL)
	}
	return nil, fmt.Errorf("storage type %q has no durable backend to administer", cfg.Storage.Type)
}

func createAdmin(ctx context.Context, store storage.Store, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	name := fs.String("name", "Administrator", "display name")
	email := fs.String("email", "", "login email (required)")
	password := fs.String("password", "", "initial password (required)")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("create-admin requires -email and -password")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	user := &org.User{Name: *name, Email: *email, IsAdmin: true, PasswordHash: hash}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	fmt.Printf("created admin %s (%s)\n", user.ID, user.Email)
	return nil
}

// seed loads a small demo organization: one company, two departments,
// a team with a leader and a member, a supervised process and a document.
func seed(ctx context.Context, store storage.Store, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	password := fs.String("password", "", "password for every seeded user (required)")
	fs.Parse(args)
	if *password == "" {
		return fmt.Errorf("seed requires -password")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	company := &org.Company{Name: "Demo Corp"}
	if err := store.CreateCompany(ctx, company); err != nil {
		return err
	}
	engineering := &org.Department{CompanyID: company.ID, Name: "Engineering"}
	operations := &org.Department{CompanyID: company.ID, Name: "Operations"}
	for _, d := range []*org.Department{engineering, operations} {
		if err := store.CreateDepartment(ctx, d); err != nil {
			return err
		}
	}
	platform := &org.Team{DepartmentID: engineering.ID, Name: "Platform"}
	if err := store.CreateTeam(ctx, platform); err != nil {
		return err
	}

	seedUser := func(name, email string) (*org.User, error) {
		u := &org.User{Name: name, Email: email, PasswordHash: hash}
		return u, store.CreateUser(ctx, u)
	}
	supervisor, err := seedUser("Sasha Supervisor", "supervisor@demo.test")
	if err != nil {
		return err
	}
	leader, err := seedUser("Lee Leader", "leader@demo.test")
	if err != nil {
		return err
	}
	member, err := seedUser("Mori Member", "member@demo.test")
	if err != nil {
		return err
	}

	if err := store.AddSupervisor(ctx, engineering.ID, supervisor.ID); err != nil {
		return err
	}
	if err := store.AddTeamLeader(ctx, platform.ID, leader.ID); err != nil {
		return err
	}
	if err := store.AddTeamMember(ctx, platform.ID, member.ID); err != nil {
		return err
	}

	owner, err := store.FindOrCreateOwner(ctx, "", platform.ID)
	if err != nil {
		return err
	}
	process := &content.Process{Name: "Onboarding", OwnerID: owner.ID}
	if err := store.CreateProcess(ctx, process); err != nil {
		return err
	}
	document := &content.Document{
		ContextID: process.ContextID,
		Title:     "Welcome",
		Content:   "Start here.",
	}
	if err := store.CreateDocument(ctx, document); err != nil {
		return err
	}
	if err := store.SetTeamGrant(ctx, document.ID, platform.ID, content.GrantRead); err != nil {
		return err
	}

	fmt.Printf("seeded company %s, team %s, process %s, document %s\n",
		company.ID, platform.ID, process.ID, document.ID)
	return nil
}
