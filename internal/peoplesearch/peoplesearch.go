package peoplesearch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.peoplescan.dev/v1"
	userAgent = "warmlead/reachout"
	// Max value for search per page.
	perPage = "100"
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}
