package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/adfbridge/adf"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
	"github.com/randalmurphal/adfbridge/jira"
)

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.URL = server.URL
	cfg.Auth.Email = "user@example.com"
	cfg.Auth.Token = "api-token"
	cfg.RateLimit.PageDelay = 0
	for _, m := range mutate {
		m(cfg)
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client, server
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	require.NoError(t, dec.Decode(&body))
	return body
}

// adfValue encodes a document the way the v2 API embeds it in a body value.
func adfValue(t *testing.T, markdown string) string {
	t.Helper()
	data, err := json.Marshal(adf.Build(markdown).Value())
	require.NoError(t, err)
	return string(data)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg:  Config{URL: "https://x.atlassian.net", Auth: jira.AuthConfig{Type: jira.AuthAPIToken, Email: "a@b.c", Token: "t"}},
		},
		{
			name:    "missing url",
			cfg:     Config{Auth: jira.AuthConfig{Type: jira.AuthAPIToken, Email: "a@b.c", Token: "t"}},
			wantErr: ErrConfigURLRequired,
		},
		{
			name:    "shared auth rules",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: jira.AuthConfig{Type: jira.AuthAPIToken}},
			wantErr: jira.ErrConfigAPITokenAuth,
		},
		{
			name:    "negative depth",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: jira.AuthConfig{Type: jira.AuthOAuth2, AccessToken: "a"}, MaxDepth: -2},
			wantErr: ErrConfigMaxDepthInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/api/v2/pages/123", r.URL.Path)
		assert.Equal(t, "atlas_doc_format", r.URL.Query().Get("body-format"))
		assert.Equal(t, "true", r.URL.Query().Get("include-version"))
		assert.Equal(t, "true", r.URL.Query().Get("include-ancestors"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user@example.com", user)
		assert.Equal(t, "api-token", pass)

		page := Page{
			ID:      "123",
			Title:   "Runbook",
			Version: &Version{Number: 4},
			Body: Body{AtlasDocFormat: &BodyValue{
				Representation: RepresentationADF,
				Value:          adfValue(t, "# Restart\n\n- drain\n- restart"),
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}), func(cfg *Config) {
		cfg.CustomIncludes = []string{"ancestors"}
	})

	page, err := client.GetPage(context.Background(), "123", nil)
	require.NoError(t, err)
	assert.Equal(t, "Runbook", page.Title)
	assert.Equal(t, 4, page.Version.Number)
	assert.Equal(t, "# Restart\n\n- drain\n- restart", page.Markdown)
}

func TestGetPageStorage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "storage", r.URL.Query().Get("body-format"))
		_, _ = io.WriteString(w, `{"id":"9","title":"Old","body":{"storage":{"representation":"storage","value":"<p ac:macro-id=\"x\">hi</p>"}}}`)
	}))

	page, err := client.GetPage(context.Background(), "9", &FieldOptions{BodyFormat: RepresentationStorage})
	require.NoError(t, err)
	assert.Empty(t, page.Markdown)
	assert.Equal(t, "<p>hi</p>", page.Body.Storage.Value)
}

func TestGetPageNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"status":404,"title":"Not Found","detail":"page 9"}]}`)
	}))

	_, err := client.GetPage(context.Background(), "9", nil)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.ErrorIs(t, err, bridgehttp.ErrNotFound)
	assert.True(t, IsNotFound(err))

	_, err = client.GetPage(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrPageIDRequired)
}

func TestGetChildren(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/api/v2/pages/1/children", r.URL.Path)
		switch r.URL.Query().Get("cursor") {
		case "":
			_, _ = io.WriteString(w, `{"results":[{"id":"2","title":"A"},{"id":"3","title":"B"}],"_links":{"next":"/wiki/api/v2/pages/1/children?cursor=c2"}}`)
		case "c2":
			_, _ = io.WriteString(w, `{"results":[{"id":"4","title":"C"}],"_links":{}}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))

	iter := client.GetChildren("1", nil)
	pages, err := iter.All(context.Background())
	require.NoError(t, err)

	titles := make([]string, len(pages))
	for i := range pages {
		titles[i] = pages[i].Title
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
	assert.Equal(t, 2, iter.Pages())
}

func TestGetFooterComments(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/api/v2/pages/1/footer-comments", r.URL.Path)
		assert.Equal(t, "atlas_doc_format", r.URL.Query().Get("body-format"))
		resp := listResponse[Comment]{Results: []Comment{{
			ID:   "c1",
			Body: Body{AtlasDocFormat: &BodyValue{Representation: RepresentationADF, Value: adfValue(t, "Looks *good*")}},
		}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))

	comments, err := client.GetFooterComments("1").All(context.Background())
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Looks *good*", comments[0].Markdown)
}

func TestCreatePage(t *testing.T) {
	var created map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/api/v2/spaces", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keys") == "ENG" {
			_, _ = io.WriteString(w, `{"results":[{"id":"777","key":"ENG","name":"Engineering"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[]}`)
	})
	mux.HandleFunc("POST /wiki/api/v2/pages", func(w http.ResponseWriter, r *http.Request) {
		created = decodeBody(t, r)
		_, _ = io.WriteString(w, `{"id":"555","title":"Design","version":{"number":1}}`)
	})
	client, _ := newTestClient(t, mux)

	page, err := client.CreatePage(context.Background(), CreatePageInput{
		SpaceKey: "ENG",
		Title:    "Design",
		ParentID: "100",
		Body:     "## Goals\n\n1. fast",
	})
	require.NoError(t, err)
	assert.Equal(t, "555", page.ID)

	assert.Equal(t, "777", created["spaceId"])
	assert.Equal(t, "100", created["parentId"])
	body := created["body"].(map[string]any)
	assert.Equal(t, RepresentationADF, body["representation"])

	doc, err := adf.DecodeBytes([]byte(body["value"].(string)))
	require.NoError(t, err)
	require.NoError(t, adf.Validate(doc))
	assert.Equal(t, "## Goals\n\n1. fast", adf.ToMarkdown(doc))

	t.Run("unknown space", func(t *testing.T) {
		_, err := client.CreatePage(context.Background(), CreatePageInput{SpaceKey: "NOPE", Title: "x"})
		assert.ErrorIs(t, err, ErrSpaceNotFound)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, err := client.CreatePage(context.Background(), CreatePageInput{SpaceKey: "ENG", Title: "x", Body: []int{1}})
		assert.ErrorIs(t, err, adf.ErrInvalidInput)
		assert.Contains(t, err.Error(), FieldBody)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := client.CreatePage(context.Background(), CreatePageInput{SpaceKey: "ENG"})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})
}

func TestUpdatePage(t *testing.T) {
	var updated map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/api/v2/pages/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("include-version"))
		_, _ = io.WriteString(w, `{"id":"42","title":"Current title","version":{"number":5}}`)
	})
	mux.HandleFunc("PUT /wiki/api/v2/pages/42", func(w http.ResponseWriter, r *http.Request) {
		updated = decodeBody(t, r)
		_, _ = io.WriteString(w, `{"id":"42","title":"Current title","version":{"number":6}}`)
	})
	client, _ := newTestClient(t, mux)

	page, err := client.UpdatePage(context.Background(), UpdatePageInput{ID: "42", Body: "new text", VersionMessage: "sync"})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Version.Number)

	assert.Equal(t, "42", updated["id"])
	assert.Equal(t, "Current title", updated["title"])
	version := updated["version"].(map[string]any)
	assert.Equal(t, json.Number("6"), version["number"])
	assert.Equal(t, "sync", version["message"])
}

func TestUpdatePageVersionMissing(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected %s", r.Method)
		}
		_, _ = io.WriteString(w, `{"id":"42","title":"t"}`)
	}))

	_, err := client.UpdatePage(context.Background(), UpdatePageInput{ID: "42", Body: "x"})
	assert.ErrorIs(t, err, ErrVersionMissing)
}

func TestSearch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `space IN ("ENG") AND (type = page)`, q.Get("cql"))
		assert.Equal(t, "250", q.Get("limit"))
		assert.Equal(t, "body.storage,version", q.Get("expand"))
		_, _ = io.WriteString(w, `{"results":[{"title":"Runbook","content":{"id":"1","type":"page","title":"Runbook"}}],"totalSize":1}`)
	}), func(cfg *Config) {
		cfg.SpacesFilter = []string{"ENG"}
	})

	resp, err := client.Search(context.Background(), "type = page", &SearchOptions{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1", resp.Results[0].Content.ID)
	assert.Equal(t, 1, resp.TotalSize)
}

func TestSearchAll(t *testing.T) {
	var serverURL string
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/search", r.URL.Path)
		if r.URL.Query().Get("cursor") == "" {
			_, _ = io.WriteString(w, `{"results":[{"title":"one"},{"title":"two"}],"_links":{"base":"`+serverURL+`/wiki","next":"/rest/api/search?cql=type%3Dpage&cursor=abc"}}`)
			return
		}
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		_, _ = io.WriteString(w, `{"results":[{"title":"three"}],"_links":{"base":"`+serverURL+`/wiki"}}`)
	}))
	serverURL = server.URL

	results, err := client.SearchAll("type = page", nil).All(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "three", results[2].Title)
}

func TestOAuth2Auth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"results":[{"id":"7","key":"ENG"}]}`)
	}), func(cfg *Config) {
		cfg.Auth = jira.AuthConfig{Type: jira.AuthOAuth2, AccessToken: "tok"}
	})

	id, err := client.GetSpaceID(context.Background(), "ENG")
	require.NoError(t, err)
	assert.Equal(t, "7", id)
	assert.Equal(t, adf.DefaultMaxDepth, client.Renderer().MaxDepth())
}
