package index

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandWireShape(t *testing.T) {
	data, err := json.Marshal(rebuildCommand(5, []string{"en_GB"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"command","rebuild":true,"buildId":5,"locales":["en_GB"]}`, string(data))

	data, err = json.Marshal(exitCommand())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"command","exit":true}`, string(data))

	data, err = json.Marshal(queryCommand(7, SearchParams{LocaleID: "en_GB", Description: "apple", Limit: 10}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"query","queryId":7,"parameters":{"localeId":"en_GB","description":"apple","limit":10}}`, string(data))
}

func TestReplyWireShape(t *testing.T) {
	data, err := json.Marshal(readyReply())
	require.NoError(t, err)
	assert.Equal(t, `"ready"`, string(data))

	data, err = json.Marshal(buildReply(0, errors.New("no defaults")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"buildCommandId":0,"success":false,"error":"no defaults"}`, string(data))

	data, err = json.Marshal(queryReply(3, &SearchResults{Foods: []FoodHeader{{ID: "1", Code: "F1", Name: "Apple"}}, Categories: []CategoryHeader{}}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"queryId":3,"success":true,"results":{"foods":[{"id":"1","code":"F1","name":"Apple"}],"categories":[]}}`, string(data))
}

func TestReplyDecode(t *testing.T) {
	var r Reply
	require.NoError(t, json.Unmarshal([]byte(`"ready"`), &r))
	assert.True(t, r.Ready)

	r = Reply{}
	require.NoError(t, json.Unmarshal([]byte(`{"buildCommandId":4,"success":true}`), &r))
	require.NotNil(t, r.BuildCommandID)
	assert.Equal(t, uint64(4), *r.BuildCommandID)
	assert.True(t, r.Success)
	assert.Nil(t, r.QueryID)

	assert.Error(t, json.Unmarshal([]byte(`"started"`), &r))
}

func TestRecoverIDs(t *testing.T) {
	buildID, queryID := recoverIDs([]byte(`{"type":"query","queryId":9,"parameters":"oops"}`))
	assert.Nil(t, buildID)
	require.NotNil(t, queryID)
	assert.Equal(t, uint64(9), *queryID)

	buildID, queryID = recoverIDs([]byte(`not json`))
	assert.Nil(t, buildID)
	assert.Nil(t, queryID)
}
