package peoplesearch

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/warmlead/reachout/internal/contacts"

	"github.com/mitchellh/mapstructure"
)

const SearchPath = "/people/search"

type SearchParams struct {
	// Query is the free-text search term, usually a role.
	Query    string `mapstructure:"query"`
	Company  string `mapstructure:"company"`
	Location string `mapstructure:"location"`
	// MaxResults caps how many candidates are requested in total.
	MaxResults int    `mapstructure:"max_results"`
	PerPage    string `mapstructure:"per_page"`
}

// Search queries the provider and decodes the result items into candidates.
func (c *Client) Search(params *SearchParams) (*contacts.Candidates, error) {
	var candidates []*contacts.Candidate

	// Set per_page max as possible. It should be faster.
	if params.PerPage == "" {
		params.PerPage = perPage
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(apiURLSearch, q)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &candidates,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode search items: %w", err)
	}

	if params.MaxResults > 0 && len(candidates) > params.MaxResults {
		candidates = candidates[:params.MaxResults]
	}

	return &contacts.Candidates{
		Items: candidates,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}

	if v := strings.TrimSpace(params.Query); v != "" {
		q.Set("q", v)
	}
	if v := strings.TrimSpace(params.Company); v != "" {
		q.Set("company", v)
	}
	if v := strings.TrimSpace(params.Location); v != "" {
		q.Set("location", v)
	}
	if params.MaxResults > 0 {
		q.Set("limit", strconv.Itoa(params.MaxResults))
	}
	if params.PerPage != "" {
		q.Set("per_page", params.PerPage)
	}

	return q
}
