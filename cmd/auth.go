package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a token, stores it with the role and warms the cache.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := r.prompt("Email", cmd.String("email"))
	if err != nil {
		return err
	}
	password := cmd.String("password")
	if password == "" {
		if password, err = r.readPassword("Password"); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}

	r.logger.Info("signing in", "email", email)
	result, err := r.library.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	if err := r.session.Login(result.Token, result.Role); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.cache.Refresh(ctx); err != nil {
		r.logger.Warn("failed to load profile", "error", err)
	}

	name := email
	if u := r.cache.User(); u != nil && u.Username != "" {
		name = u.Username
	}
	r.writePlain("✓ Signed in as %s (%s)\n", name, result.Role)
	if st := r.session.Status(); st.State == session.Active {
		r.writePlain("Session expires in %s\n", st.TTL.Round(time.Minute))
	}
	return nil
}

// AuthSignup registers an account. It does not sign in.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	username, err := r.prompt("Username", cmd.String("username"))
	if err != nil {
		return err
	}
	email, err := r.prompt("Email", cmd.String("email"))
	if err != nil {
		return err
	}
	password := cmd.String("password")
	if password == "" {
		if password, err = r.readPassword("Password"); err != nil {
			return err
		}
	}

	role, err := models.ParseRole(cmd.String("role"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", shared.ErrMissingArgument)
	}

	if err := r.library.Signup(ctx, models.Registration{Username: username, Email: email, Password: password, Role: role}); err != nil {
		return err
	}

	r.writePlain("✓ Account created for %s\n", username)
	r.writePlain("Run 'shelf auth login' to sign in\n")
	return nil
}

// AuthLogout clears the stored session after confirmation.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Status().Present() {
		return r.writePlain("Not signed in\n")
	}
	ok, err := r.confirm(cmd, "Log out of shelf?")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: logout", shared.ErrCancelled)
	}
	if err := r.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.cache.Reset()
	return r.writePlain("✓ Signed out\n")
}

type statusReport struct {
	State     string      `json:"state"`
	UserID    string      `json:"userId,omitempty"`
	Username  string      `json:"username,omitempty"`
	Role      models.Role `json:"role,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	TTL       string      `json:"ttl,omitempty"`
}

// AuthStatus inspects the stored token locally. An expired token is cleared, as the monitor would.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	st := r.session.Status()
	rep := statusReport{State: st.State.String()}
	if c := st.Claims; c != nil {
		rep.UserID = c.Subject()
		rep.Username = c.Username
		rep.Role = c.Role
		if c.ExpiresAt != nil {
			t := c.ExpiresAt.Time
			rep.ExpiresAt = &t
		}
	}
	if st.State == session.Active {
		rep.TTL = st.TTL.Round(time.Second).String()
	}
	if st.State == session.Expired {
		if _, err := r.session.RequireActive(); err != nil {
			r.logger.Debug("expired session cleared", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(rep, cmd.Bool("pretty"))
	}

	switch st.State {
	case session.Active:
		r.writePlain("✓ Signed in as %s (%s)\n", rep.Username, rep.Role)
		r.writePlain("Expires: %s (in %s)\n", rep.ExpiresAt.Local().Format(time.DateTime), rep.TTL)
	case session.Expired:
		r.writePlain("✗ Session expired, please login again\n")
	default:
		r.writePlain("✗ Not signed in\n")
	}
	return nil
}

// ProfileShow prints the signed-in account.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	if err := r.cache.FetchUser(ctx); err != nil {
		return err
	}
	u := r.cache.User()

	if cmd.Bool("json") {
		return r.writeJSON(u, cmd.Bool("pretty"))
	}

	r.writePlainHeader(u.Username)
	r.writePlain("Email:    %s\n", u.Email)
	r.writePlain("Role:     %s\n", u.Role)
	r.writePlain("Wishlist: %d books\n", len(u.Wishlist))
	return nil
}

// ProfileUpdate changes username or email and replaces the cached profile.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	update := models.ProfileUpdate{Username: cmd.String("username"), Email: cmd.String("email")}
	if update.Username == "" && update.Email == "" {
		return fmt.Errorf("%w: --username or --email is required", shared.ErrMissingArgument)
	}

	u, err := r.library.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	r.cache.SetUser(u)
	return r.writePlain("✓ Profile updated: %s <%s>\n", u.Username, u.Email)
}
