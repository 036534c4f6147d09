package integrations

import "context"

// ImageFetcher downloads a resolved asset URL. utils.API satisfies it.
type ImageFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
