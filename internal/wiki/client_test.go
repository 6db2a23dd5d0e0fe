package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(Config{
		APIURL:     srv.URL + "/w/api.php",
		PageURL:    srv.URL + "/wiki/",
		UserAgent:  "quiz-test/1.0",
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, nil, opts...)
	return client, srv
}

func TestPageThumbnail(t *testing.T) {
	t.Parallel()

	var gotUA, gotAPIUA, gotProp, gotSize, gotFormat string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAPIUA = r.Header.Get("Api-User-Agent")
		q := r.URL.Query()
		gotProp, gotSize, gotFormat = q.Get("prop"), q.Get("pithumbsize"), q.Get("formatversion")
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"모차르트","thumbnail":{"source":"https://upload.example/m.jpg"}}]}}`))
	})

	src, err := client.PageThumbnail(context.Background(), "모차르트", 600)
	require.NoError(t, err)
	require.Equal(t, "https://upload.example/m.jpg", src)
	require.Equal(t, "quiz-test/1.0", gotUA)
	require.Equal(t, "quiz-test/1.0", gotAPIUA)
	require.Equal(t, "pageimages", gotProp)
	require.Equal(t, "600", gotSize)
	require.Equal(t, "2", gotFormat)
}

func TestPageThumbnailAbsent(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"X"}]}}`))
	})

	src, err := client.PageThumbnail(context.Background(), "X", 600)
	require.NoError(t, err)
	require.Empty(t, src)
}

func TestExtractMissingPage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"Nobody","missing":true}]}}`))
	})

	_, err := client.Extract(context.Background(), "Nobody")
	require.ErrorIs(t, err, ErrMissingPage)
}

func TestExtractTrimsWhitespace(t *testing.T) {
	t.Parallel()

	var plain string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		plain = r.URL.Query().Get("explaintext")
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"A","extract":"  intro text \n"}]}}`))
	})

	text, err := client.Extract(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "intro text", text)
	require.Equal(t, "1", plain)
}

func TestImagesAndImageURL(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("prop") {
		case "images":
			_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"A","images":[{"title":"파일:A.jpg"},{"title":"파일:B.png"},{"title":"파일:C.jpg"}]}]}}`))
		case "imageinfo":
			_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"파일:A.jpg","imageinfo":[{"url":"https://upload.example/A.jpg"}]}]}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	files, err := client.Images(context.Background(), "A", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"파일:A.jpg", "파일:B.png"}, files)

	direct, err := client.ImageURL(context.Background(), "파일:A.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://upload.example/A.jpg", direct)
}

func TestCategoryMembersFiltersNamespaces(t *testing.T) {
	t.Parallel()

	var list, cmtitle string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		list, cmtitle = r.URL.Query().Get("list"), r.URL.Query().Get("cmtitle")
		_, _ = w.Write([]byte(`{"query":{"categorymembers":[{"ns":0,"title":"볼프강 아마데우스 모차르트"},{"ns":14,"title":"분류:하위"},{"ns":0,"title":""}]}}`))
	})

	titles, err := client.CategoryMembers(context.Background(), "분류:1756년 태어남", 50)
	require.NoError(t, err)
	require.Equal(t, []string{"볼프강 아마데우스 모차르트"}, titles)
	require.Equal(t, "categorymembers", list)
	require.Equal(t, "분류:1756년 태어남", cmtitle)
}

func TestQueryRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"A","extract":"ok"}]}}`))
	})

	text, err := client.Extract(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "ok", text)
	require.Equal(t, int32(2), calls.Load())
}

func TestQueryDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Extract(context.Background(), "A")
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestQueryRejectsNonJSON(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.Extract(context.Background(), "A")
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed")
	require.Equal(t, int32(1), calls.Load())
}

func TestQueryUsesCache(t *testing.T) {
	t.Parallel()

	cache, err := NewResponseCache(time.Minute, "")
	require.NoError(t, err)

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"A","extract":"cached"}]}}`))
	}, WithCache(cache))

	for range 3 {
		text, err := client.Extract(context.Background(), "A")
		require.NoError(t, err)
		require.Equal(t, "cached", text)
	}
	require.Equal(t, int32(1), calls.Load())
}

type recordingWaiter struct {
	calls atomic.Int32
}

func (w *recordingWaiter) Wait(context.Context, string) error {
	w.calls.Add(1)
	return nil
}

func TestQueryWaitsOnLimiter(t *testing.T) {
	t.Parallel()

	waiter := &recordingWaiter{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"A","extract":"x"}]}}`))
	}, WithLimiter(waiter))

	_, err := client.Extract(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, int32(1), waiter.calls.Load())
}

type stubFetcher struct {
	got  quiz.FetchRequest
	resp quiz.FetchResponse
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, req quiz.FetchRequest) (quiz.FetchResponse, error) {
	s.got = req
	return s.resp, s.err
}

func TestPageHTML(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{resp: quiz.FetchResponse{StatusCode: 200, Body: []byte("<html></html>")}}
	client := New(Config{APIURL: "https://ko.example/w/api.php", PageURL: "https://ko.example/wiki/", UserAgent: "ua"}, fetcher)

	page, err := client.PageHTML(context.Background(), "모차르트 (음악가)")
	require.NoError(t, err)
	require.Equal(t, "https://ko.example/wiki/%EB%AA%A8%EC%B0%A8%EB%A5%B4%ED%8A%B8_%28%EC%9D%8C%EC%95%85%EA%B0%80%29", fetcher.got.URL)
	require.Equal(t, fetcher.got.URL, page.URL)
	require.Equal(t, "ua", fetcher.got.Headers.Get("User-Agent"))
	require.Equal(t, "<html></html>", string(page.HTML))
}

func TestPageHTMLPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{err: errors.New("boom")}
	client := New(Config{PageURL: "https://ko.example/wiki/"}, fetcher)

	_, err := client.PageHTML(context.Background(), "A")
	require.ErrorContains(t, err, "boom")
}
