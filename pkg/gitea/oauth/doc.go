// Package oauth implements the Gitea OAuth2 authorization-code flow.
//
// # Overview
//
// The package is independent of [gitea.Client]: it only needs the server's
// base URL. Two steps are covered:
//
//  1. [AuthorizationURL] builds the URL a user agent is redirected to.
//  2. [ExchangeToken] trades the returned authorization code (or a refresh
//     token) for an [AccessToken].
//
// # Usage
//
//	u, err := oauth.AuthorizationURL("https://gitea.example.com/",
//	    clientID, "https://app.example.com/callback", "code", state)
//	// redirect the browser to u.String(), then on callback:
//	tok, err := oauth.ExchangeToken(ctx, "https://gitea.example.com/", oauth.AccessTokenForm{
//	    GrantType:    oauth.GrantAuthorizationCode,
//	    ClientID:     clientID,
//	    ClientSecret: clientSecret,
//	    RedirectURI:  "https://app.example.com/callback",
//	    Code:         code,
//	}, nil)
//
// The resulting token plugs into [gitea.Builder.OAuth2Token].
//
// # Refresh
//
// Tokens are never refreshed automatically. When [AccessToken.Expired]
// reports true, exchange the refresh token with [GrantRefreshToken] and
// install the new token with [gitea.Client.SetCredential].
//
// [gitea.Client]: github.com/matzehuels/gritea/pkg/gitea.Client
// [gitea.Builder.OAuth2Token]: github.com/matzehuels/gritea/pkg/gitea.Builder.OAuth2Token
// [gitea.Client.SetCredential]: github.com/matzehuels/gritea/pkg/gitea.Client.SetCredential
package oauth
