package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbox/pollbox/internal/model"
)

func TestCastVoteEndpoint_DuplicateIsConflict(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.newUser(t, "owner@example.com")
	_, voter := api.newUser(t, "voter@example.com")
	pw := api.createPoll(t, owner, "Lunch?")

	rec := api.do(t, http.MethodPost, "/api/polls/"+pw.Poll.ID+"/votes", voter,
		map[string]any{"optionId": pw.Options[0].ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same voter again, different option: still one vote per poll.
	rec = api.do(t, http.MethodPost, "/api/polls/"+pw.Poll.ID+"/votes", voter,
		map[string]any{"optionId": pw.Options[1].ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var tally model.Tally
	rec = api.do(t, http.MethodGet, "/api/polls/"+pw.Poll.ID+"/results", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &tally)
	assert.Equal(t, int64(1), tally.TotalVotes)
}

func TestCastVoteEndpoint_CrossPollOption(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.newUser(t, "owner@example.com")
	_, voter := api.newUser(t, "voter@example.com")
	pollA := api.createPoll(t, owner, "Poll A")
	pollB := api.createPoll(t, owner, "Poll B")

	rec := api.do(t, http.MethodPost, "/api/polls/"+pollA.Poll.ID+"/votes", voter,
		map[string]any{"optionId": pollB.Options[0].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCastVoteEndpoint_Unauthenticated(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.newUser(t, "owner@example.com")
	pw := api.createPoll(t, owner, "Lunch?")

	rec := api.do(t, http.MethodPost, "/api/polls/"+pw.Poll.ID+"/votes", "",
		map[string]any{"optionId": pw.Options[0].ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCastVoteEndpoint_MissingPoll(t *testing.T) {
	api := newTestAPI(t)
	_, voter := api.newUser(t, "voter@example.com")

	rec := api.do(t, http.MethodPost, "/api/polls/no-such-poll/votes", voter,
		map[string]any{"optionId": "o1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsEndpoint_ZeroVoteOptionsIncluded(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.newUser(t, "owner@example.com")
	_, voter := api.newUser(t, "voter@example.com")
	pw := api.createPoll(t, owner, "Lunch?", "Pizza", "Sushi", "Salad")

	rec := api.do(t, http.MethodPost, "/api/polls/"+pw.Poll.ID+"/votes", voter,
		map[string]any{"optionId": pw.Options[1].ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tally model.Tally
	rec = api.do(t, http.MethodGet, "/api/polls/"+pw.Poll.ID+"/results", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &tally)

	require.Len(t, tally.Options, 3)
	assert.Equal(t, int64(0), tally.Options[0].Count)
	assert.Equal(t, int64(1), tally.Options[1].Count)
	assert.Equal(t, int64(0), tally.Options[2].Count)
	assert.Equal(t, int64(1), tally.TotalVotes)
}
