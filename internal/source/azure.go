package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// newAzureClient creates a blob client authenticated with the account key.
func newAzureClient(accountName, accountKey string) (*azblob.Client, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("Azure account name and key are required") //nolint:staticcheck // proper noun
	}
	sharedKeyCred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKeyCred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return client, nil
}

func (o *Opener) openAzure(ctx context.Context, uri string) (io.ReadCloser, error) {
	container, key, err := parseAzurePath(uri)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	if o.azure == nil {
		o.azure, err = newAzureClient(o.opts.AzureAccountName, o.opts.AzureAccountKey)
	}
	client := o.azure
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}

	resp, err := client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		return nil, fmt.Errorf("download blob %q: %w", uri, err)
	}
	return resp.Body, nil
}

// parseAzurePath extracts container and blob from an Azure storage URI
// (abfss://, az://, or https://<account>.blob.core.windows.net/).
func parseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "abfss":
		// url.Parse reads "container@account.dfs.core.windows.net" as
		// userinfo@host.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		key = strings.TrimPrefix(u.Path, "/")
	case "az":
		container = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		container, key, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty blob in Azure path %q", path)
	}
	return container, key, nil
}
