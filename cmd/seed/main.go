package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/config"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/internal/services"
)

type CLI struct {
	db         *gorm.DB
	auth       *services.AuthService
	workspaces *services.WorkspaceService
	automation *services.AutomationService
	deals      *services.DealService
	clients    *services.ClientService
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	audit := services.NewAuditService(db.DB())
	automation := services.NewAutomationService(db.DB(), audit)
	sessions := services.NewSessionService(db, nil)

	cli := &CLI{
		db:         db.DB(),
		auth:       services.NewAuthService(db.DB(), sessions),
		workspaces: services.NewWorkspaceService(db, automation),
		automation: automation,
		deals:      services.NewDealService(db.DB(), automation, audit),
		clients:    services.NewClientService(db.DB(), audit),
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "user-create":
		cli.createUser(args)
	case "workspace-create":
		cli.createWorkspace(args)
	case "member-add":
		cli.addMember(args)
	case "workspace-list":
		cli.listWorkspaces()
	case "demo":
		cli.seedDemo()
	case "db-status":
		cli.checkDatabaseStatus()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("TeamFlow CRM API - Seed CLI")
	fmt.Println()
	fmt.Println("Usage: seed <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  user-create       Create a user account")
	fmt.Println("  workspace-create  Create a workspace owned by an existing user")
	fmt.Println("  member-add        Add an existing user to a workspace with a role")
	fmt.Println("  workspace-list    List all workspaces")
	fmt.Println("  demo              Seed a demo workspace with users, clients and deals")
	fmt.Println("  db-status         Check database connection status")
	fmt.Println()
	fmt.Println("Use 'seed <command> -h' for command-specific help")
}

func (cli *CLI) createUser(args []string) {
	var (
		email         string
		password      string
		name          string
		platformAdmin bool
	)

	fs := flag.NewFlagSet("user-create", flag.ExitOnError)
	fs.StringVar(&email, "email", "", "User email (required)")
	fs.StringVar(&password, "password", "", "User password (required)")
	fs.StringVar(&name, "name", "", "Display name")
	fs.BoolVar(&platformAdmin, "platform-admin", false, "Grant cross-tenant platform admin access")

	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	if email == "" || password == "" {
		fmt.Println("Error: --email and --password are required")
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	user, err := cli.auth.Register(ctx, email, password, name)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	if platformAdmin {
		if err := cli.db.Model(user).Update("is_platform_admin", true).Error; err != nil {
			log.Fatalf("Failed to grant platform admin: %v", err)
		}
	}

	fmt.Printf("✅ User created successfully!\n")
	fmt.Printf("   ID: %d\n", user.ID)
	fmt.Printf("   Email: %s\n", user.Email)
	if platformAdmin {
		fmt.Printf("   Platform admin: yes\n")
	}
}

func (cli *CLI) createWorkspace(args []string) {
	var (
		name       string
		slug       string
		ownerEmail string
	)

	fs := flag.NewFlagSet("workspace-create", flag.ExitOnError)
	fs.StringVar(&name, "name", "", "Workspace name (required)")
	fs.StringVar(&slug, "slug", "", "Workspace slug (required)")
	fs.StringVar(&ownerEmail, "owner", "", "Owner's email (required)")

	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	if name == "" || slug == "" || ownerEmail == "" {
		fmt.Println("Error: --name, --slug and --owner are required")
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	owner := cli.mustFindUser(ownerEmail)

	workspace, err := cli.workspaces.Create(ctx, name, slug, owner.ID)
	if err != nil {
		log.Fatalf("Failed to create workspace: %v", err)
	}

	fmt.Printf("✅ Workspace created successfully!\n")
	fmt.Printf("   ID: %d\n", workspace.ID)
	fmt.Printf("   Name: %s\n", workspace.Name)
	fmt.Printf("   Slug: %s\n", workspace.Slug)
	fmt.Printf("   Owner: %s\n", owner.Email)
}

func (cli *CLI) addMember(args []string) {
	var (
		slug  string
		email string
		role  string
	)

	fs := flag.NewFlagSet("member-add", flag.ExitOnError)
	fs.StringVar(&slug, "workspace", "", "Workspace slug (required)")
	fs.StringVar(&email, "email", "", "User email (required)")
	fs.StringVar(&role, "role", string(rbac.RoleAgent), "Role (OWNER, ADMIN, MANAGER, AGENT, VIEWER)")

	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	if slug == "" || email == "" {
		fmt.Println("Error: --workspace and --email are required")
		fs.Usage()
		os.Exit(1)
	}
	if !rbac.IsValidRole(rbac.Role(role)) {
		log.Fatalf("Invalid role: %s", role)
	}

	ctx := context.Background()
	workspace, err := cli.workspaces.GetBySlug(ctx, slug)
	if err != nil {
		log.Fatalf("Workspace %q not found: %v", slug, err)
	}
	user := cli.mustFindUser(email)

	member := &models.Member{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        rbac.Role(role),
	}
	if err := cli.db.Create(member).Error; err != nil {
		log.Fatalf("Failed to add member: %v", err)
	}

	fmt.Printf("✅ Member added successfully!\n")
	fmt.Printf("   Workspace: %s\n", workspace.Slug)
	fmt.Printf("   User: %s\n", user.Email)
	fmt.Printf("   Role: %s\n", role)
}

func (cli *CLI) listWorkspaces() {
	var workspaces []models.Workspace
	if err := cli.db.Order("id").Find(&workspaces).Error; err != nil {
		log.Fatalf("Failed to list workspaces: %v", err)
	}

	if len(workspaces) == 0 {
		fmt.Println("No workspaces found")
		return
	}

	for _, ws := range workspaces {
		var members int64
		cli.db.Model(&models.Member{}).Where("workspace_id = ?", ws.ID).Count(&members)
		fmt.Printf("%-4d %-30s %-20s %d members\n", ws.ID, ws.Name, ws.Slug, members)
	}
}

// seedDemo creates a demo workspace with one user per role, a handful of
// clients and deals in assorted pipeline stages. Deal creation goes
// through DealService so the automation templates fire as in production.
func (cli *CLI) seedDemo() {
	ctx := context.Background()

	type demoUser struct {
		email string
		name  string
		role  rbac.Role
	}
	demoUsers := []demoUser{
		{"owner@demo.teamflow.io", "Demo Owner", rbac.RoleOwner},
		{"admin@demo.teamflow.io", "Demo Admin", rbac.RoleAdmin},
		{"manager@demo.teamflow.io", "Demo Manager", rbac.RoleManager},
		{"agent@demo.teamflow.io", "Demo Agent", rbac.RoleAgent},
		{"viewer@demo.teamflow.io", "Demo Viewer", rbac.RoleViewer},
	}

	users := make(map[rbac.Role]*models.User, len(demoUsers))
	for _, du := range demoUsers {
		user, err := cli.auth.Register(ctx, du.email, "Demo1234pass", du.name)
		if err != nil {
			// Re-running the demo seed is allowed; reuse existing accounts.
			user = cli.mustFindUser(du.email)
		}
		users[du.role] = user
	}

	workspace, err := cli.workspaces.Create(ctx, "Demo Workspace", "demo", users[rbac.RoleOwner].ID)
	if err != nil {
		workspace, err = cli.workspaces.GetBySlug(ctx, "demo")
		if err != nil {
			log.Fatalf("Failed to create demo workspace: %v", err)
		}
	}

	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleManager, rbac.RoleAgent, rbac.RoleViewer} {
		member := &models.Member{
			WorkspaceID: workspace.ID,
			UserID:      users[role].ID,
			Role:        role,
		}
		cli.db.Where("workspace_id = ? AND user_id = ?", workspace.ID, member.UserID).
			FirstOrCreate(member)
	}

	owner, err := cli.workspaces.ResolveMember(ctx, workspace.ID, users[rbac.RoleOwner].ID)
	if err != nil {
		log.Fatalf("Failed to resolve demo owner: %v", err)
	}

	demoClients := []struct{ name, company string }{
		{"Анна Смирнова", "ООО Ромашка"},
		{"Иван Петров", "ЗАО Вектор"},
		{"Мария Козлова", "ИП Козлова"},
	}
	clients := make([]*models.Client, 0, len(demoClients))
	for _, dc := range demoClients {
		client, err := cli.clients.Create(ctx, owner, dc.name, "", "", dc.company, "")
		if err != nil {
			log.Fatalf("Failed to create demo client: %v", err)
		}
		clients = append(clients, client)
	}

	amount := func(v float64) *float64 { return &v }
	demoDeals := []services.DealInput{
		{Title: "Поставка оборудования", Stage: models.StageLead, Amount: amount(150000), ClientID: &clients[0].ID},
		{Title: "Внедрение CRM", Stage: models.StageQualification, Amount: amount(480000), ClientID: &clients[1].ID},
		{Title: "Техническая поддержка", Stage: models.StageProposal, Amount: amount(96000), ClientID: &clients[2].ID},
	}
	for _, input := range demoDeals {
		if _, err := cli.deals.Create(ctx, owner, input); err != nil {
			log.Fatalf("Failed to create demo deal: %v", err)
		}
	}

	fmt.Printf("✅ Demo data seeded!\n")
	fmt.Printf("   Workspace: %s (slug: %s)\n", workspace.Name, workspace.Slug)
	fmt.Printf("   Users: %d (password: Demo1234pass)\n", len(demoUsers))
	fmt.Printf("   Clients: %d, Deals: %d\n", len(clients), len(demoDeals))
}

func (cli *CLI) checkDatabaseStatus() {
	sqlDB, err := cli.db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Database is not reachable: %v", err)
	}

	stats := sqlDB.Stats()
	fmt.Println("✅ Database connection OK")
	fmt.Printf("   Open connections: %d\n", stats.OpenConnections)
	fmt.Printf("   In use: %d\n", stats.InUse)
	fmt.Printf("   Idle: %d\n", stats.Idle)
}

func (cli *CLI) mustFindUser(email string) *models.User {
	var user models.User
	if err := cli.db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("User %q not found: %v", email, err)
	}
	return &user
}
