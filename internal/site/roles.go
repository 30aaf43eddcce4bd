package site

import (
	"context"
	"fmt"

	"lsfd202201/internal/model"
)

// DefaultRoleName is the role assigned to users created without an explicit
// role.
const DefaultRoleName = "User"

// DefaultRoleDefinitions is the canonical role table. Seeding resets each
// named role to exactly this permission set.
func DefaultRoleDefinitions() map[string][]model.Permission {
	return map[string][]model.Permission{
		"User":          {model.PermFollow, model.PermComment, model.PermWrite},
		"Moderator":     {model.PermFollow, model.PermComment, model.PermWrite, model.PermModerate},
		"Administrator": {model.PermFollow, model.PermComment, model.PermWrite, model.PermModerate, model.PermAdmin},
	}
}

// SeedRoles upserts each named role: create it if absent, reset its bitmask,
// add each flag in the definition, and mark exactly defaultRole as default.
// Safe to run repeatedly; re-seeding yields identical role rows.
func (s *Service) SeedRoles(ctx context.Context, definitions map[string][]model.Permission, defaultRole string) error {
	for name, perms := range definitions {
		role, err := s.store.FindRoleByName(ctx, name)
		if err != nil {
			return fmt.Errorf("finding role %q: %w", name, err)
		}
		if role == nil {
			role = &model.Role{Name: name}
		}

		role.ResetPermissions()
		for _, p := range perms {
			role.AddPermission(p)
		}
		role.Default = name == defaultRole

		if _, err := s.store.SaveRole(ctx, role); err != nil {
			return fmt.Errorf("saving role %q: %w", name, err)
		}
	}

	s.logger.Info("roles seeded", "count", len(definitions), "default", defaultRole)
	return nil
}

// CreateUser registers a user with the given role and hashes the password.
// roleName may be empty, in which case the default role is used.
func (s *Service) CreateUser(ctx context.Context, name, password, roleName string) (*model.User, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if roleName == "" {
		roleName = DefaultRoleName
	}

	existing, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking for existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %q already exists", name)
	}

	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("finding role %q: %w", roleName, err)
	}
	if role == nil {
		return nil, fmt.Errorf("role %q does not exist (run roles seed first)", roleName)
	}

	user := &model.User{
		ID:     s.idgen.New(),
		Name:   name,
		RoleID: role.ID,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "name", name, "role", roleName)
	return user, nil
}

// SetUserPassword rehashes and replaces the password of an existing user.
func (s *Service) SetUserPassword(ctx context.Context, name, password string) error {
	user, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %q does not exist", name)
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}

	if _, err := s.store.UpdateUserPassword(ctx, user.ID, user.PasswordHash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("user password updated", "name", name)
	return nil
}
