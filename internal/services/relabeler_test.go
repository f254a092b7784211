package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-matching/internal/classifier"
	"fixture-matching/internal/database"
)

func newRelabelerFixture(t *testing.T) (*Relabeler, *database.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	model, err := classifier.Train(classifier.DefaultCorpus())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRelabeler(db.Emails, classifier.NewRef(model), logger), db
}

func seedUnreviewedEmail(t *testing.T, db *database.DB, subject, body, label string) *database.InboundEmail {
	t.Helper()

	email := &database.InboundEmail{
		MessageID: "msg-" + subject,
		Sender:    "broker@example.com",
		Subject:   subject,
		BodyText:  body,
		Label:     label,
		Reviewed:  false,
	}
	require.NoError(t, db.Emails.Create(email))
	return email
}

func TestRelabelUnreviewedCorrectsStaleLabel(t *testing.T) {
	relabeler, db := newRelabelerFixture(t)

	// A vessel position list carrying a stale OTHER label from an older model.
	email := seedUnreviewedEmail(t, db,
		"MV Baltic Wind open position",
		"MV Baltic Wind, 45,000 DWT bulk carrier, geared, open Rotterdam 10-20 October. Open for grain cargoes.",
		classifier.LabelOther)

	summary, err := relabeler.RelabelUnreviewed(0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalEmails)
	assert.Equal(t, 1, summary.ChangedCount)
	assert.Equal(t, 0, summary.FailureCount)

	got, err := db.Emails.GetByID(email.ID)
	require.NoError(t, err)
	assert.Equal(t, classifier.LabelVessel, got.Label)
	assert.False(t, got.Reviewed, "automatic relabel must not mark the email reviewed")
}

func TestRelabelUnreviewedDryRun(t *testing.T) {
	relabeler, db := newRelabelerFixture(t)

	email := seedUnreviewedEmail(t, db,
		"Wheat stem 50,000 mt",
		"Wheat cargo 50,000 MT ex Rotterdam to Hamburg, laycan 10-20 October. Need geared tonnage.",
		classifier.LabelOther)

	summary, err := relabeler.RelabelUnreviewed(0, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChangedCount)

	got, err := db.Emails.GetByID(email.ID)
	require.NoError(t, err)
	assert.Equal(t, classifier.LabelOther, got.Label, "dry run must not write labels")
}

func TestRelabelUnreviewedSkipsReviewedEmails(t *testing.T) {
	relabeler, db := newRelabelerFixture(t)

	email := &database.InboundEmail{
		MessageID: "msg-reviewed",
		Sender:    "broker@example.com",
		Subject:   "MV Baltic Wind open position",
		BodyText:  "MV Baltic Wind, 45,000 DWT bulk carrier, open Rotterdam.",
		Label:     classifier.LabelOther,
		Reviewed:  true,
	}
	require.NoError(t, db.Emails.Create(email))

	summary, err := relabeler.RelabelUnreviewed(0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalEmails, "reviewed emails must be skipped")

	_, err = relabeler.RelabelEmail(email.ID, false)
	assert.Error(t, err, "RelabelEmail must refuse a reviewed email")
}

func TestRelabelUnreviewedHonorsLimit(t *testing.T) {
	relabeler, db := newRelabelerFixture(t)

	seedUnreviewedEmail(t, db, "first", "MV Alpha, 40,000 DWT open Singapore.", classifier.LabelOther)
	seedUnreviewedEmail(t, db, "second", "MV Beta, 55,000 DWT open Hamburg.", classifier.LabelOther)

	summary, err := relabeler.RelabelUnreviewed(1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmails)
}

func TestRelabelEmailUntrainedModel(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relabeler := NewRelabeler(db.Emails, classifier.NewRef(nil), logger)

	email := seedUnreviewedEmail(t, db, "anything", "anything at all", classifier.LabelOther)

	result, err := relabeler.RelabelEmail(email.ID, false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error, "expected a classification error with an untrained model")
}
