package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestLocationSplitsFolderAndPublicID(t *testing.T) {
	at := time.Unix(1700000000, 0)
	svc := &Service{folder: "/sprint/resources/", now: func() time.Time { return at }}

	folder, publicID := svc.location("circle-12/Week 3 notes.pdf")
	require.Equal(t, "sprint/resources/circle-12", folder)
	require.Equal(t, "Week-3-notes-1700000000", publicID)

	folder, publicID = svc.location("../../etc/???.txt")
	require.Equal(t, "sprint/resources/etc", folder)
	require.Equal(t, "resource-1700000000", publicID)
}
