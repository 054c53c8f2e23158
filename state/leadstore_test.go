package state

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLead(channel string) model.Lead {
	return model.Lead{
		Channel:     channel,
		Title:       "Video by " + channel,
		Views:       2000,
		ChannelLink: "https://www.youtube.com/@" + strings.ToLower(channel),
		Date:        "10/10/2026",
	}
}

func TestLeadStore_AppendLeads_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")
	store := NewLeadStore(path)

	require.NoError(t, store.AppendLeads([]model.Lead{testLead("Alpha"), testLead("Beta")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "\ufeff" +
		"Channel;Title;Views;Channel Link;Date\r\n" +
		"Alpha;Video by Alpha;2000;https://www.youtube.com/@alpha;10/10/2026\r\n" +
		"Beta;Video by Beta;2000;https://www.youtube.com/@beta;10/10/2026\r\n"
	assert.Equal(t, want, string(data))
}

func TestLeadStore_AppendLeads_TwoRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")

	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{testLead("Alpha")}))
	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{testLead("Beta")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Equal(t, 1, strings.Count(content, "Channel;Title;Views;Channel Link;Date"))
	assert.Equal(t, 1, strings.Count(content, "\ufeff"))
	assert.True(t, strings.HasPrefix(content, "\ufeffChannel;"))
	assert.Less(t, strings.Index(content, "Alpha;"), strings.Index(content, "Beta;"))
}

func TestLeadStore_AppendLeads_ExistingFileKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")
	prior := "\ufeffChannel;Title;Views;Channel Link;Date\r\nOld;Old video;10;;01/01/2020\r\n"
	require.NoError(t, os.WriteFile(path, []byte(prior), 0644))

	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{testLead("New")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), prior))
	assert.True(t, strings.HasSuffix(string(data), "New;Video by New;2000;https://www.youtube.com/@new;10/10/2026\r\n"))
}

func TestLeadStore_AppendLeads_EmptyExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{testLead("Alpha")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// the file existed, so no header, but it was empty so the BOM is written
	assert.Equal(t, "\ufeffAlpha;Video by Alpha;2000;https://www.youtube.com/@alpha;10/10/2026\r\n", string(data))
}

func TestLeadStore_AppendLeads_Nothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")

	require.NoError(t, NewLeadStore(path).AppendLeads(nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLeadStore_AppendLeads_QuotesDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")
	lead := testLead("Alpha")
	lead.Title = "Part 1; the beginning"

	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{lead}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Alpha;"Part 1; the beginning";2000;`)
}

func TestLeadStore_AppendLeads_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "leads.csv")

	require.NoError(t, NewLeadStore(path).AppendLeads([]model.Lead{testLead("Alpha")}))
	assert.FileExists(t, path)
}

func TestLeadStore_AppendLeads_Unwritable(t *testing.T) {
	dir := t.TempDir()
	// a directory at the target path cannot be opened for writing
	path := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.Mkdir(path, 0755))

	err := NewLeadStore(path).AppendLeads([]model.Lead{testLead("Alpha")})
	assert.Error(t, err)
}

func TestLeadStore_AppendLeads_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_leads.csv")
	store := NewLeadStore(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AppendLeads([]model.Lead{testLead(string(rune('A' + i)))}))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, 1, strings.Count(string(data), "Channel;Title"))
}
