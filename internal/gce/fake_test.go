package gce

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbweber/gcevm/internal/gce/gcetest"
)

// startFake serves fake and returns a Client connected to it.
func startFake(t *testing.T, fake *gcetest.Fake) (*Client, *httptest.Server) {
	t.Helper()
	srv := fake.Start(t)

	c, err := Connect(context.Background(), Options{
		Endpoint:              srv.URL + "/",
		WithoutAuthentication: true,
	})
	require.NoError(t, err)
	return c, srv
}
