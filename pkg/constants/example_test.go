package constants_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentstation/eccnsync/pkg/constants"
)

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}
	fmt.Printf("HTTP timeout: %v\n", client.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), constants.SyncTimeout)
	defer cancel()
	_ = ctx
	fmt.Printf("Sync timeout: %v\n", constants.SyncTimeout)
	// Output:
	// HTTP timeout: 1m0s
	// Sync timeout: 10m0s
}

// Example_zoho demonstrates the export authorization header
func Example_zoho() {
	fmt.Println(constants.ZohoAuthScheme + " 1000.abc")
	// Output:
	// Zoho-oauthtoken 1000.abc
}
