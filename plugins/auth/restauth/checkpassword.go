package restauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gatehouse-io/gatehouse/host"
	"github.com/gatehouse-io/gatehouse/logging"
)

// CheckPassword implements auth.PasswordVerifier.
//
// The sequence is fixed: derive the localpart, POST the credentials to the
// verification endpoint, trust the `success` field, then — only for a
// verified user the host doesn't know yet — enforce the lowercase policy and
// request provisioning. Every failure mode collapses to false; the password
// value is never logged.
func (ra *RestAuthPlugin) CheckPassword(ctx context.Context, userID, password string) bool {
	logging.Infow(ctx, "restauth: got password check", "user", userID)

	localpart := host.Localpart(userID)

	form := url.Values{
		"api_token": {ra.policy.APIToken},
		"username":  {localpart},
		"password":  {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ra.policy.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		logging.Errorw(ctx, "restauth: failed to build verification request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ra.client.Do(req)
	if err != nil {
		logging.Errorw(ctx, "restauth: verification request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Errorw(ctx, "restauth: verification request failed", "status", resp.StatusCode)
		return false
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logging.Errorw(ctx, "restauth: invalid JSON response", "error", err)
		return false
	}

	if !truthy(result["success"]) {
		logging.Infow(ctx, "restauth: authentication failed", "user", userID)
		return false
	}
	logging.Infow(ctx, "restauth: authentication successful", "user", userID)

	exists, err := ra.accounts.UserExists(ctx, userID)
	if err != nil {
		logging.Errorw(ctx, "restauth: existence check failed", "user", userID, "error", err)
		return false
	}

	if exists {
		logging.Infow(ctx, "restauth: user already exists, registration skipped", "user", userID)
		return true
	}

	logging.Infow(ctx, "restauth: user does not exist yet, creating", "user", userID)

	if ra.policy.EnforceLowercase && localpart != strings.ToLower(localpart) {
		logging.Infow(ctx, "restauth: user cannot be created due to username lowercase policy", "localpart", localpart)
		return false
	}

	newUserID, _, err := ra.accounts.Register(ctx, localpart)
	if err != nil {
		logging.Errorw(ctx, "restauth: registration failed", "localpart", localpart, "error", err)
		return false
	}
	logging.Infow(ctx, "restauth: registration successful", "user", newUserID)

	return true
}

// truthy mirrors the loose interpretation of the `success` field: any
// non-empty, non-zero, non-false JSON value passes.
func truthy(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
