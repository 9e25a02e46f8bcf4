package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const ProviderGitHub = "github"

type GitHubProfile struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// GitHubProvider runs the authorization code flow against GitHub and loads
// the signed-in user's profile.
type GitHubProvider struct {
	Config  *oauth2.Config
	APIBase string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		APIBase: "https://api.github.com",
	}
}

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubProfile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	return p.FetchProfile(ctx, p.Config.Client(ctx, token))
}

func (p *GitHubProvider) FetchProfile(ctx context.Context, client *http.Client) (*GitHubProfile, error) {
	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}

	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}

	profile := &GitHubProfile{
		ID:        strconv.FormatInt(user.ID, 10),
		Login:     user.Login,
		Name:      user.Name,
		Email:     strings.ToLower(user.Email),
		AvatarURL: user.AvatarURL,
	}

	if profile.Name == "" {
		profile.Name = user.Login
	}

	if profile.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}

		if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return nil, err
		}

		for _, e := range emails {
			if e.Primary && e.Verified {
				profile.Email = strings.ToLower(e.Email)
				break
			}
		}
	}

	return profile, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("github %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode github %s: %w", path, err)
	}

	return nil
}
