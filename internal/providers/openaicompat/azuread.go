package openaicompat

import (
	"context"

	"golang.org/x/oauth2/clientcredentials"
)

// AzureADClientCredentials configures service-principal (client
// credentials) auth against Azure AD/Entra ID, for deployments that
// front Azure OpenAI with AAD tokens instead of a static API key.
type AzureADClientCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// Scope defaults to the Cognitive Services resource scope if empty.
	Scope string
}

func (c AzureADClientCredentials) tokenURL() string {
	return "https://login.microsoftonline.com/" + c.TenantID + "/oauth2/v2.0/token"
}

func (c AzureADClientCredentials) scope() string {
	if c.Scope != "" {
		return c.Scope
	}
	return "https://cognitiveservices.azure.com/.default"
}

// NewAzureADTokenFunc returns a Config.AzureADTokenFunc backed by an
// oauth2 client-credentials flow, fetching (and the underlying
// oauth2.TokenSource caching) a fresh bearer token on each call.
func NewAzureADTokenFunc(creds AzureADClientCredentials) func() (string, error) {
	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.tokenURL(),
		Scopes:       []string{creds.scope()},
	}
	source := cfg.TokenSource(context.Background())
	return func() (string, error) {
		token, err := source.Token()
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}
}
