package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/adfbridge/adf"
	bridgehttp "github.com/randalmurphal/adfbridge/http"
	"github.com/randalmurphal/adfbridge/testutil"
)

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*Config)) *Client {
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
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	require.NoError(t, dec.Decode(&body))
	return body
}

const issueWithMedia = `{
	"id": "10001",
	"key": "PROJ-1",
	"fields": {
		"summary": "Broken login",
		"issuetype": {"id": "1", "name": "Bug"},
		"status": {"id": "3", "name": "In Progress"},
		"priority": {"id": "2", "name": "High"},
		"project": {"id": "100", "key": "PROJ", "name": "Project"},
		"assignee": {"accountId": "5b10", "displayName": "Sam Lee"},
		"created": "2025-01-15T10:30:00.000+0000",
		"updated": "2025-01-16T08:00:00.000+0000",
		"attachment": [{"id": "200", "filename": "trace.log", "mimeType": "text/plain", "size": 512, "content": "https://x/200"}],
		"description": {
			"type": "doc",
			"version": 1,
			"content": [
				{"type": "paragraph", "content": [{"type": "text", "text": "Steps attached."}]},
				{"type": "mediaSingle", "content": [{"type": "media", "attrs": {"id": "f-1", "alt": "trace.log", "type": "file"}}]}
			]
		}
	}
}`

const commentsWithMedia = `{
	"startAt": 0, "maxResults": 50, "total": 1,
	"comments": [{
		"id": "300",
		"author": {"displayName": "Kim Park"},
		"created": "2025-01-16T09:00:00.000+0000",
		"body": {"type": "doc", "version": 1, "content": [
			{"type": "paragraph", "content": [
				{"type": "text", "text": "See "},
				{"type": "mediaInline", "attrs": {"id": "f-1", "alt": "trace.log"}}
			]}
		]}
	}]
}`

func TestGetIssue(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user@example.com:api-token"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/PROJ-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("fields"), "attachment")
		_, _ = io.WriteString(w, issueWithMedia)
	})
	mux.HandleFunc("GET /rest/api/3/issue/PROJ-1/comment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, commentsWithMedia)
	})
	client := newTestClient(t, mux)

	t.Run("markdown", func(t *testing.T) {
		view, err := client.GetIssue(context.Background(), "PROJ-1", ViewOptions{AsMarkdown: true})
		require.NoError(t, err)

		assert.Equal(t, "PROJ-1", view.Key)
		assert.Equal(t, "Bug", view.Type)
		assert.Equal(t, "In Progress", view.Status)
		assert.Equal(t, "High", view.Priority)
		assert.Equal(t, "Project", view.Project)
		assert.Equal(t, "Sam Lee", view.Assignee)
		assert.Empty(t, view.Reporter)
		assert.Equal(t, "Steps attached.\n\n[Media: trace.log (id:200)]", view.Description)
		assert.Nil(t, view.DescriptionADF)

		require.Len(t, view.Attachments, 1)
		assert.Equal(t, "200", view.Attachments[0].ID)

		require.Len(t, view.Comments, 1)
		assert.Equal(t, "Kim Park", view.Comments[0].Author)
		assert.Equal(t, "See [Media: trace.log (id:200)]", view.Comments[0].Body)
	})

	t.Run("raw adf", func(t *testing.T) {
		view, err := client.GetIssue(context.Background(), "PROJ-1", ViewOptions{})
		require.NoError(t, err)

		assert.Empty(t, view.Description)
		doc, err := adf.DecodeBytes(view.DescriptionADF)
		require.NoError(t, err)
		assert.NoError(t, adf.Validate(doc))
		require.Len(t, view.Comments, 1)
		assert.Empty(t, view.Comments[0].Body)
		assert.NotEmpty(t, view.Comments[0].BodyADF)
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := client.GetIssue(context.Background(), "proj-1", ViewOptions{})
		assert.ErrorIs(t, err, ErrIssueKeyInvalid)
	})
}

func TestGetIssueCommentsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/PROJ-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, issueWithMedia)
	})
	mux.HandleFunc("GET /rest/api/3/issue/PROJ-1/comment", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errorMessages":["no browse permission"]}`)
	})
	client := newTestClient(t, mux)

	view, err := client.GetIssue(context.Background(), "PROJ-1", ViewOptions{AsMarkdown: true})
	require.NoError(t, err)
	assert.NotNil(t, view.Comments)
	assert.Empty(t, view.Comments)
}

func TestGetIssueNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errorMessages":["Issue does not exist or you do not have permission to see it."]}`)
	}))

	_, err := client.GetIssue(context.Background(), "PROJ-404", ViewOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIssueNotFound)
	assert.ErrorIs(t, err, bridgehttp.ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Issue does not exist")
}

func TestCreateIssue(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/3/issue", r.URL.Path)
		assert.Equal(t, "-renderedFields", r.URL.Query().Get("expand"))
		got = decodeBody(t, r)
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, CreateIssueResponse{ID: "10002", Key: "PROJ-2"})
	}))

	resp, err := client.CreateIssue(context.Background(), CreateIssueInput{
		ProjectKey:  "PROJ",
		Summary:     "New thing",
		Description: "## Plan\n\nShip **it**",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-2", resp.Key)

	fields := got["fields"].(map[string]any)
	assert.Equal(t, "Task", fields["issuetype"].(map[string]any)["name"])
	assert.Equal(t, "PROJ", fields["project"].(map[string]any)["key"])

	description := fields["description"].(map[string]any)
	assert.Equal(t, "doc", description["type"])
	assert.NoError(t, adf.Validate(description))
	content := description["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "heading", content[0].(map[string]any)["type"])
}

func TestCreateIssueValidation(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateIssueInput
		wantErr error
	}{
		{"missing project", CreateIssueInput{Summary: "s"}, ErrProjectRequired},
		{"missing summary", CreateIssueInput{ProjectKey: "P"}, ErrSummaryRequired},
		{"bad description type", CreateIssueInput{ProjectKey: "P", Summary: "s", Description: 42}, adf.ErrInvalidInput},
		{
			name:    "invalid adf",
			in:      CreateIssueInput{ProjectKey: "P", Summary: "s", Description: map[string]any{"type": "doc", "version": 2, "content": []any{}}},
			wantErr: adf.ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateIssue(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateIssue() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	assert.Zero(t, calls.Load(), "invalid input must not reach the API")
}

func TestUpdateIssue(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/rest/api/3/issue/PROJ-1", r.URL.Path)
		got = decodeBody(t, r)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.UpdateIssue(context.Background(), "PROJ-1", map[string]any{
		"summary":     "Renamed",
		"labels":      []string{"ux"},
		"description": "updated *text*",
	})
	require.NoError(t, err)

	fields := got["fields"].(map[string]any)
	assert.Equal(t, "Renamed", fields["summary"])
	assert.Equal(t, []any{"ux"}, fields["labels"])
	assert.Equal(t, "doc", fields["description"].(map[string]any)["type"])
}

func TestAddComment(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-1/comment", r.URL.Path)
		got = decodeBody(t, r)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"301","body":{"type":"doc","version":1,"content":[]}}`)
	}))

	comment, err := client.AddComment(context.Background(), "PROJ-1", "- one\n- two")
	require.NoError(t, err)
	assert.Equal(t, "301", comment.ID)

	body := got["body"].(map[string]any)
	content := body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "bulletList", content[0].(map[string]any)["type"])

	t.Run("nil body is an empty document", func(t *testing.T) {
		_, err := client.AddComment(context.Background(), "PROJ-1", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"type": "doc", "version": json.Number("1"), "content": []any{}}, got["body"])
	})

	t.Run("adf body passes through", func(t *testing.T) {
		doc := testutil.Doc(testutil.Heading(2, "Notes"), testutil.Paragraph(testutil.Text("done", "strong")))
		_, err := client.AddComment(context.Background(), "PROJ-1", doc)
		require.NoError(t, err)
		testutil.AssertMarkdown(t, adf.ToMarkdown(got["body"]), "## Notes\n\n**done**")
	})

	t.Run("invalid adf body is rejected", func(t *testing.T) {
		got = nil
		_, err := client.AddComment(context.Background(), "PROJ-1", map[string]any{"type": "doc", "version": 2, "content": []any{}})
		assert.ErrorIs(t, err, adf.ErrWrongVersion)
		assert.Nil(t, got)
	})
}

func TestUpdateCommentNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-1/comment/999", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.UpdateComment(context.Background(), "PROJ-1", "999", "text")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	_, err = client.UpdateComment(context.Background(), "PROJ-1", "", "text")
	assert.ErrorIs(t, err, ErrCommentIDRequired)
}

func TestSearch(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/search/jql", r.URL.Path)
		got = decodeBody(t, r)
		_, _ = io.WriteString(w, `{"issues":[`+issueWithMedia+`],"isLast":true}`)
	}), func(cfg *Config) {
		cfg.Search.ProjectsFilter = []string{"PROJ"}
	})

	result, err := client.Search(context.Background(), "status = Open", &SearchOptions{AsMarkdown: true})
	require.NoError(t, err)

	assert.Equal(t, `project IN ("PROJ") AND (status = Open)`, got["jql"])
	assert.Equal(t, json.Number("50"), got["maxResults"])
	assert.Contains(t, got["fields"], "description")
	assert.NotContains(t, got, "nextPageToken")

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Steps attached.\n\n[Media: trace.log]", result.Descriptions["PROJ-1"])
	assert.Empty(t, result.NextPageToken)
}

func TestSearchAll(t *testing.T) {
	var tokens []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		token, _ := body["nextPageToken"].(string)
		tokens = append(tokens, token)
		assert.Equal(t, json.Number("100"), body["maxResults"])

		switch token {
		case "":
			_, _ = io.WriteString(w, `{"issues":[{"key":"PROJ-1"},{"key":"PROJ-2"}],"nextPageToken":"page-2"}`)
		case "page-2":
			_, _ = io.WriteString(w, `{"issues":[{"key":"PROJ-3"}],"isLast":true}`)
		default:
			t.Errorf("unexpected token %q", token)
		}
	}))

	iter := client.SearchAll("ORDER BY created", nil)
	issues, err := iter.All(context.Background())
	require.NoError(t, err)

	keys := make([]string, len(issues))
	for i := range issues {
		keys[i] = issues[i].Key
	}
	assert.Equal(t, []string{"PROJ-1", "PROJ-2", "PROJ-3"}, keys)
	assert.Equal(t, []string{"", "page-2"}, tokens)
	assert.Equal(t, 2, iter.Pages())
}

func TestTransitionIssueByName(t *testing.T) {
	var transitioned string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/PROJ-1/transitions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"transitions":[{"id":"11","name":"To Do"},{"id":"31","name":"Done"}]}`)
	})
	mux.HandleFunc("POST /rest/api/3/issue/PROJ-1/transitions", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		transitioned = body["transition"].(map[string]any)["id"].(string)
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, mux)

	require.NoError(t, client.TransitionIssueByName(context.Background(), "PROJ-1", "done"))
	assert.Equal(t, "31", transitioned)

	err := client.TransitionIssueByName(context.Background(), "PROJ-1", "Archived")
	assert.ErrorIs(t, err, ErrTransitionNotFound)
	assert.Contains(t, err.Error(), `"Archived"`)
}

func TestDownloadAttachment(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/attachment/200", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, Attachment{ID: "200", Filename: "trace.log", MimeType: "text/plain", Content: serverURL + "/secure/attachment/200/trace.log"})
	})
	mux.HandleFunc("GET /rest/api/3/attachment/201", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, Attachment{ID: "201"})
	})
	mux.HandleFunc("GET /secure/attachment/200/trace.log", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "line 1\nline 2\n")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL

	cfg := DefaultConfig()
	cfg.URL = server.URL
	cfg.Auth.Email = "user@example.com"
	cfg.Auth.Token = "api-token"
	client, err := NewClient(cfg)
	require.NoError(t, err)

	got, err := client.DownloadAttachment(context.Background(), "200")
	require.NoError(t, err)
	assert.Equal(t, "trace.log", got.Filename)
	assert.Equal(t, "text/plain", got.MimeType)
	assert.Equal(t, "line 1\nline 2\n", string(got.Data))

	_, err = client.DownloadAttachment(context.Background(), "201")
	assert.ErrorIs(t, err, ErrAttachmentNoContent)

	_, err = client.DownloadAttachment(context.Background(), "")
	assert.ErrorIs(t, err, ErrAttachmentIDRequired)
}

func TestOAuth2Client(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"transitions":[]}`)
	}), func(cfg *Config) {
		cfg.Auth = AuthConfig{Type: AuthOAuth2, AccessToken: "access-123"}
	})

	transitions, err := client.GetTransitions(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestClientContext(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	ctx := ContextWithClient(context.Background(), client)
	assert.Same(t, client, ClientFromContext(ctx))
	assert.Nil(t, ClientFromContext(context.Background()))
	assert.Equal(t, adf.DefaultMaxDepth, client.Renderer().MaxDepth())
	assert.Equal(t, -1, client.RateLimitRemaining())
}

func TestRenderRichText(t *testing.T) {
	r := adf.NewRenderer()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"null", "null", ""},
		{"string", `"plain"`, "plain"},
		{"document", `{"type":"doc","version":1,"content":[{"type":"rule"}]}`, "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderRichText(r, json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("renderRichText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
