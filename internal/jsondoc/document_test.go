package jsondoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"base_requests": [
		{"type": "Stop", "name": "Tolstopaltsevo", "latitude": 55.611087, "longitude": 37.20829, "road_distances": {"Marushkino": 3900}},
		{"type": "Bus", "name": "750", "stops": ["Tolstopaltsevo", "Marushkino"], "is_roundtrip": false}
	],
	"routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
	"note": null
}`

func TestParseAndNavigate(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "object", root.Kind())
	assert.True(t, root.Has("base_requests"))
	assert.False(t, root.Has("stat_requests"))

	keys, err := root.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"base_requests", "note", "routing_settings"}, keys)

	base, err := root.Get("base_requests")
	require.NoError(t, err)
	requests, err := base.Array()
	require.NoError(t, err)
	require.Len(t, requests, 2)

	stop, err := requests[0].Map()
	require.NoError(t, err)

	name, err := stop["name"].String()
	require.NoError(t, err)
	assert.Equal(t, "Tolstopaltsevo", name)

	lat, err := stop["latitude"].Float()
	require.NoError(t, err)
	assert.InDelta(t, 55.611087, lat, 1e-9)

	distances, err := stop["road_distances"].Map()
	require.NoError(t, err)
	meters, err := distances["Marushkino"].Int()
	require.NoError(t, err)
	assert.Equal(t, 3900, meters)

	roundTrip, err := requests[1].Get("is_roundtrip")
	require.NoError(t, err)
	flag, err := roundTrip.Bool()
	require.NoError(t, err)
	assert.False(t, flag)

	note, ok := root.Lookup("note")
	require.True(t, ok)
	assert.True(t, note.IsNull())

	_, ok = root.Lookup("render_settings")
	assert.False(t, ok)
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a": }`, `[1, 2,]`, `{"a": 1} trailing`} {
		_, err := Parse([]byte(input))
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, "input %q", input)
	}
}

func TestTypeErrors(t *testing.T) {
	doc, err := Parse([]byte(`{"name": 7, "list": [true, 1.5], "nested": {"x": "y"}}`))
	require.NoError(t, err)
	root := doc.Root()

	tests := []struct {
		name string
		call func() error
		path string
		want string
		got  string
	}{
		{
			name: "number read as string",
			call: func() error {
				n, _ := root.Get("name")
				_, err := n.String()
				return err
			},
			path: "$.name", want: "string", got: "number",
		},
		{
			name: "fraction read as integer",
			call: func() error {
				list, _ := root.Get("list")
				items, _ := list.Array()
				_, err := items[1].Int()
				return err
			},
			path: "$.list[1]", want: "integer", got: "number 1.5",
		},
		{
			name: "bool read as float",
			call: func() error {
				list, _ := root.Get("list")
				items, _ := list.Array()
				_, err := items[0].Float()
				return err
			},
			path: "$.list[0]", want: "number", got: "bool",
		},
		{
			name: "object read as array",
			call: func() error {
				n, _ := root.Get("nested")
				_, err := n.Array()
				return err
			},
			path: "$.nested", want: "array", got: "object",
		},
		{
			name: "missing member",
			call: func() error {
				n, _ := root.Get("nested")
				_, err := n.Get("z")
				return err
			},
			path: "$.nested.z", want: "member", got: "missing",
		},
		{
			name: "member of a non-object",
			call: func() error {
				n, _ := root.Get("name")
				_, err := n.Get("x")
				return err
			},
			path: "$.name", want: "object", got: "number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var typeErr *TypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, tt.path, typeErr.Path)
			assert.Equal(t, tt.want, typeErr.Want)
			assert.Equal(t, tt.got, typeErr.Got)
		})
	}
}
