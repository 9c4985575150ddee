package listview

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/types"
)

func student(id, name string, age types.Age, group string) types.Student {
	return types.Student{ID: id, Name: name, Age: age, Group: group, Email: id + "@example.com"}
}

func ids(records []types.Student) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func sample() []types.Student {
	return []types.Student{
		student("1", "Charlie", "22", "B"),
		student("2", "alice", "19", "A"),
		student("3", "Bob", "abc", "A"),
		student("4", "", "30", "C"),
		student("5", "ALICIA", "19", "B"),
	}
}

func TestFilter_SearchCaseInsensitive(t *testing.T) {
	got := Filter(sample(), "ALI", "")
	assert.Equal(t, []string{"2", "5"}, ids(got))
}

func TestFilter_SearchProperty(t *testing.T) {
	records := sample()
	term := "li"
	got := Filter(records, term, "")

	kept := map[string]bool{}
	for _, r := range got {
		kept[r.ID] = true
		assert.Contains(t, strings.ToLower(r.Name), term)
	}
	for _, r := range records {
		if r.Name != "" && !kept[r.ID] {
			assert.NotContains(t, strings.ToLower(r.Name), term)
		}
	}
}

func TestFilter_MissingNameNeverMatches(t *testing.T) {
	got := Filter(sample(), "a", "")
	assert.NotContains(t, ids(got), "4")
	assert.Contains(t, ids(Filter(sample(), "", "")), "4")
}

func TestFilter_GroupExact(t *testing.T) {
	assert.Equal(t, []string{"2", "3"}, ids(Filter(sample(), "", "A")))
	assert.Empty(t, Filter(sample(), "", "a"))
	assert.Equal(t, []string{"5"}, ids(Filter(sample(), "ali", "B")))
}

func TestSort_NameAscDesc(t *testing.T) {
	assert.Equal(t, []string{"4", "2", "5", "3", "1"}, ids(Sort(sample(), SortByName, Asc)))
	assert.Equal(t, []string{"1", "3", "5", "2", "4"}, ids(Sort(sample(), SortByName, Desc)))
}

func TestSort_AgeNumericWithUnparseableAsZero(t *testing.T) {
	records := append(sample(), student("6", "Dan", "100", "A"), student("7", "Eve", "", "A"))
	for _, order := range []Order{Asc, Desc} {
		got := Sort(records, SortByAge, order)
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1].Age.Int(), got[i].Age.Int()
			if order == Asc {
				assert.LessOrEqual(t, prev, cur)
			} else {
				assert.GreaterOrEqual(t, prev, cur)
			}
		}
	}
	// "abc" and "" both count as 0; stability keeps their input order.
	assert.Equal(t, []string{"3", "7"}, ids(Sort(records, SortByAge, Asc))[:2])
}

func TestSort_StableForTies(t *testing.T) {
	records := sample()
	// ids 2 and 5 share age 19 in both directions.
	asc := ids(Sort(records, SortByAge, Asc))
	desc := ids(Sort(records, SortByAge, Desc))
	assert.Less(t, indexOf(asc, "2"), indexOf(asc, "5"))
	assert.Less(t, indexOf(desc, "2"), indexOf(desc, "5"))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := sample()
	before := ids(records)
	_ = Sort(records, SortByName, Desc)
	assert.Equal(t, before, ids(records))
}

func TestSort_UnknownFieldKeepsOrder(t *testing.T) {
	assert.Equal(t, ids(sample()), ids(Sort(sample(), SortField("avatar"), Desc)))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestPaginate_ConcatenationReproducesList(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{0, 1, 21, 22, 23, 44, 45, 100} {
		records := make([]types.Student, n)
		for i := range records {
			records[i] = student(fmt.Sprint(i), fmt.Sprintf("n%03d", rng.Intn(50)), types.AgeOf(16+rng.Intn(80)), "A")
		}
		sorted := Sort(records, SortByName, Asc)

		var joined []types.Student
		pages := TotalPages(n, DefaultPageSize)
		for p := 1; p <= pages; p++ {
			joined = append(joined, Paginate(sorted, p, DefaultPageSize)...)
		}
		if n == 0 {
			assert.Empty(t, joined)
			continue
		}
		if diff := cmp.Diff(ids(sorted), ids(joined)); diff != "" {
			t.Errorf("n=%d pages mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	records := make([]types.Student, 30)
	for i := range records {
		records[i] = student(fmt.Sprint(i), "x", "20", "A")
	}
	assert.Len(t, Paginate(records, 0, 22), 22)
	assert.Len(t, Paginate(records, 9, 22), 8)
}

func TestDerive_TwentyFiveRecordsByName(t *testing.T) {
	var records []types.Student
	for i := 24; i >= 0; i-- {
		// Mixed case to exercise case-insensitive ordering.
		name := fmt.Sprintf("student %02d", i)
		if i%2 == 0 {
			name = strings.ToUpper(name)
		}
		records = append(records, student(fmt.Sprint(i), name, "20", "A"))
	}

	q := DefaultQuery()
	v := Derive(records, q)
	require.Equal(t, 25, v.Total)
	require.Equal(t, 2, v.TotalPages)
	require.Len(t, v.Items, 22)
	for i, r := range v.Items {
		assert.Equal(t, fmt.Sprint(i), r.ID)
	}

	q.Page = 2
	v = Derive(records, q)
	assert.Equal(t, []string{"22", "23", "24"}, ids(v.Items))
}

func TestDerive_EmptyRecords(t *testing.T) {
	v := Derive(nil, DefaultQuery())
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 1, v.TotalPages)
	assert.Empty(t, v.Items)
}

func TestGroups_FirstSeenDistinctNonEmpty(t *testing.T) {
	records := append(sample(), student("6", "Zed", "20", ""))
	assert.Equal(t, []string{"B", "A", "C"}, Groups(records))
}

func TestOrderFlip(t *testing.T) {
	assert.Equal(t, Desc, Asc.Flip())
	assert.Equal(t, Asc, Desc.Flip())
}
