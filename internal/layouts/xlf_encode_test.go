package layouts_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-signage/internal/layouts"
)

const roundTripDocument = `<layout schemaVersion="2" width="1280" height="720" bgcolor="#fff">
  <region id="a" userId="1" name="header" width="1280" height="120" top="0" left="0">
    <media id="100" type="image" userid="1" duration="15">
      <options><scaleType>stretch</scaleType><align>center</align></options>
    </media>
    <media id="t1" type="text" userid="2" duration="5">
      <options><effect>marqueeLeft</effect></options>
      <raw><text><![CDATA[<b>Breaking</b> & news]]></text><style><![CDATA[p { color: red; }]]></style></raw>
    </media>
    <media id="x" type="retired"/>
  </region>
  <region id="b" userId="1" width="640.5" height="600" top="120" left="0.25">
    <media id="w1" type="webpage" userid="1" duration="30"><options><uri>http://example.com/?a=1&amp;b=2</uri></options></media>
  </region>
</layout>`

func TestEncodeRoundTripPreservesStructure(t *testing.T) {
	parser := layouts.NewXLFParser(newResolver())
	original, err := parser.Parse([]byte(roundTripDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	encoded, err := layouts.EncodeXLF(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	reparsed, err := parser.Parse(encoded)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, encoded)
	}

	if reparsed.Width != original.Width || reparsed.Height != original.Height ||
		reparsed.SchemaVersion != original.SchemaVersion || reparsed.BackgroundColor != original.BackgroundColor {
		t.Fatalf("layout attributes changed: %+v vs %+v", reparsed, original)
	}
	if len(reparsed.Regions) != len(original.Regions) {
		t.Fatalf("expected %d regions, got %d", len(original.Regions), len(reparsed.Regions))
	}
	for rIdx, region := range original.Regions {
		got := reparsed.Regions[rIdx]
		if got.Name != region.Name || got.Width != region.Width || got.Left != region.Left || got.OwnerID != region.OwnerID {
			t.Fatalf("region %d changed: %+v vs %+v", rIdx, got, region)
		}
		want := region.Playlists[0].Widgets
		have := got.Playlists[0].Widgets
		if len(have) != len(want) {
			t.Fatalf("region %d: expected %d widgets, got %d", rIdx, len(want), len(have))
		}
		for wIdx, widget := range want {
			other := have[wIdx]
			if other.Type != widget.Type || other.Duration != widget.Duration || other.OwnerID != widget.OwnerID {
				t.Fatalf("widget %d/%d changed: %+v vs %+v", rIdx, wIdx, other, widget)
			}
			if strings.Join(other.MediaIDs, ",") != strings.Join(widget.MediaIDs, ",") {
				t.Fatalf("widget %d/%d media changed: %v vs %v", rIdx, wIdx, other.MediaIDs, widget.MediaIDs)
			}
			if len(other.Options) != len(widget.Options) {
				t.Fatalf("widget %d/%d: expected %d options, got %d", rIdx, wIdx, len(widget.Options), len(other.Options))
			}
			for oIdx, option := range widget.Options {
				o := other.Options[oIdx]
				if o.Kind != option.Kind || o.Key != option.Key || o.Value != option.Value {
					t.Fatalf("option %d/%d/%d changed: %+v vs %+v", rIdx, wIdx, oIdx, o, option)
				}
			}
		}
	}
}

func TestEncodeSplitsCDataTerminator(t *testing.T) {
	layout := &layouts.Layout{Width: 10, Height: 10}
	region := layout.AddRegion(&layouts.Region{Width: 10, Height: 10})
	widget := region.AddPlaylist(&layouts.Playlist{}).AddWidget(&layouts.Widget{Type: "text"})
	widget.AddOption(layouts.OptionKindCData, "text", "a]]>b<c>")

	encoded, err := layouts.EncodeXLF(layout)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Contains(encoded, []byte("<![CDATA[")) {
		t.Fatalf("expected cdata section in output: %s", encoded)
	}

	reparsed, err := layouts.NewXLFParser(newResolver()).Parse(encoded)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got := reparsed.Regions[0].Playlists[0].Widgets[0].Options[0]
	if got.Value != "a]]>b<c>" || got.Kind != layouts.OptionKindCData {
		t.Fatalf("unexpected option after round trip %+v", got)
	}
}

func TestEncodeAssignsDeterministicIDs(t *testing.T) {
	build := func() *layouts.Layout {
		layout := &layouts.Layout{Name: "lobby", Width: 10, Height: 10}
		for i := 0; i < 2; i++ {
			region := layout.AddRegion(&layouts.Region{Width: 5, Height: 5})
			region.AddPlaylist(&layouts.Playlist{}).AddWidget(&layouts.Widget{Type: "text"})
		}
		return layout
	}

	first, err := layouts.EncodeXLF(build())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := layouts.EncodeXLF(build())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected stable output\n%s\n%s", first, second)
	}

	reparsed, err := layouts.NewXLFParser(newResolver()).Parse(first)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for idx, region := range reparsed.Regions {
		if got := len(region.Playlists[0].Widgets); got != 1 {
			t.Fatalf("region %d: expected its own widget, got %d", idx, got)
		}
	}
}

func TestEncodeRejectsInvalidOptionKeys(t *testing.T) {
	layout := &layouts.Layout{Width: 10, Height: 10}
	widget := layout.AddRegion(&layouts.Region{}).AddPlaylist(&layouts.Playlist{}).AddWidget(&layouts.Widget{Type: "text"})
	widget.AddOption(layouts.OptionKindAttribute, "not a name", "x")

	if _, err := layouts.EncodeXLF(layout); !errors.Is(err, layouts.ErrLayoutInvalid) {
		t.Fatalf("expected ErrLayoutInvalid, got %v", err)
	}
}
