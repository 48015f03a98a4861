//go:build integration

package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/shortlink/internal/pgtest"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

type APITestSuite struct {
	suite.Suite
	db      *sqlx.DB
	urlRepo *postgres.URLRepository
	server  *httptest.Server
	e       *httpexpect.Expect
}

func (suite *APITestSuite) SetupSuite() {
	suite.db = pgtest.Open(suite.T())
	suite.urlRepo = postgres.NewURLRepository(suite.db)

	urlUseCase := usecase.New(suite.urlRepo, usecase.WithReservedCodes(ReservedCodes...))

	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	router := NewRouter(logger, urlUseCase, Options{
		AppName: "URL Shortener",
		BaseURL: "https://sho.rt",
	})

	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *APITestSuite) TearDownSubTest() {
	_, err := suite.db.ExecContext(context.Background(), `TRUNCATE TABLE urls RESTART IDENTITY CASCADE`)
	if err != nil {
		suite.T().Fatalf("Failed to clean urls table: %v", err)
	}
}

func (suite *APITestSuite) shorten(originalURL string) string {
	return suite.e.POST("/shorten").
		WithJSON(map[string]string{"original_url": originalURL}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("short_code").String().Raw()
}

func (suite *APITestSuite) TestShortenURL() {
	suite.Run("success", func() {
		resp := suite.e.POST("/shorten").
			WithJSON(map[string]string{"original_url": "https://example.com/very/long/path"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		shortCode := resp.Value("short_code").String().Raw()
		resp.Value("short_code").String().Length().IsEqual(6)
		resp.Value("short_code").String().Match("^[0-9A-Za-z]{6}$")
		resp.HasValue("short_url", "https://sho.rt/"+shortCode)
		resp.HasValue("original_url", "https://example.com/very/long/path")
		resp.HasValue("is_active", true)
		resp.HasValue("clicks", 0)

		url, err := suite.urlRepo.RetrieveByShortCode(context.Background(), shortCode)
		if err != nil {
			suite.T().Fatalf("Failed to retrieve url record: %v", err)
		}

		resp.HasValue("id", url.ID)
	})

	suite.Run("same url gets a new code each time", func() {
		first := suite.shorten("https://example.com")
		second := suite.shorten("https://example.com")

		suite.NotEqual(first, second)
	})

	suite.Run("invalid url is not stored", func() {
		suite.e.POST("/shorten").
			WithJSON(map[string]string{"original_url": "not a url"}).
			Expect().
			Status(http.StatusUnprocessableEntity)

		var count int
		if err := suite.db.Get(&count, `SELECT COUNT(*) FROM urls`); err != nil {
			suite.T().Fatalf("Failed to count urls: %v", err)
		}
		suite.Zero(count)
	})
}

func (suite *APITestSuite) TestRedirectAndStats() {
	suite.Run("redirect counts a click and stats do not", func() {
		shortCode := suite.shorten("https://example.com/very/long/path?q=1")

		suite.e.GET("/stats/"+shortCode).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("clicks", 0)

		suite.e.GET("/"+shortCode).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com/very/long/path?q=1")

		for range 3 {
			suite.e.GET("/stats/"+shortCode).
				Expect().
				Status(http.StatusOK).
				JSON().Object().
				HasValue("short_code", shortCode).
				HasValue("clicks", 1)
		}
	})

	suite.Run("unknown code", func() {
		suite.e.GET("/abc123").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", "error")

		suite.e.GET("/stats/abc123").
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("retired code", func() {
		shortCode := suite.shorten("https://example.com/old")

		_, err := suite.db.ExecContext(context.Background(),
			`UPDATE urls SET is_active = FALSE WHERE short_code = $1`, shortCode)
		if err != nil {
			suite.T().Fatalf("Failed to retire url: %v", err)
		}

		suite.e.GET("/"+shortCode).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound)

		suite.e.GET("/stats/"+shortCode).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("concurrent redirects count every click", func() {
		shortCode := suite.shorten("https://example.com/hot")

		const n = 25

		client := &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}

		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()

				resp, err := client.Get(suite.server.URL + "/" + shortCode)
				if suite.NoError(err) {
					resp.Body.Close()
					suite.Equal(http.StatusFound, resp.StatusCode)
				}
			}()
		}
		wg.Wait()

		suite.e.GET("/stats/"+shortCode).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("clicks", n)
	})
}

func TestAPI_Integration(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
