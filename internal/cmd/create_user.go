package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"diningroom/internal/config"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

const minPasswordLength = 8

type userInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

var newUser userInput

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register a staff account",
	Long: `Register a staff account that can log in through POST /auth/login.

Roles: admin, waiter, kitchen.`,
	RunE: runCreateUser,
}

func init() {
	rootCmd.AddCommand(createUserCmd)

	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "Login email (required)")
	createUserCmd.Flags().StringVar(&newUser.Name, "name", "", "Display name")
	createUserCmd.Flags().StringVar(&newUser.Role, "role", models.RoleWaiter, "admin, waiter or kitchen")
	createUserCmd.Flags().StringVar(&newUser.Password, "password", "", "Password (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	config.Load()
	cfg := config.AppEnv
	if cfg.Store == config.StoreMemory {
		return errors.New("create-user needs a persistent store; set STORE=mongo")
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	user, err := createUser(cmd.Context(), st, newUser)
	if errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("user %s already exists", newUser.Email)
	}
	if err != nil {
		return err
	}
	fmt.Printf("created %s user %s (%s)\n", user.Role, user.Email, user.ID.Hex())
	return nil
}

// createUser validates the input and stores a bcrypt-hashed account.
// A taken email returns store.ErrDuplicate.
func createUser(ctx context.Context, st store.Store, in userInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, errors.New("a valid email is required")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !models.ValidRole(role) {
		return models.User{}, fmt.Errorf("invalid role %q", in.Role)
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := models.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := st.Users().Insert(ctx, &user); err != nil {
		return models.User{}, err
	}

	log.Printf("[USER] [INFO] %s user %s created", role, email)
	return user, nil
}
