package layouts

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode"

	"github.com/goliatone/go-signage/internal/identity"
	"github.com/google/uuid"
)

type xlfDocument struct {
	XMLName       xml.Name    `xml:"layout"`
	SchemaVersion string      `xml:"schemaVersion,attr"`
	Width         string      `xml:"width,attr"`
	Height        string      `xml:"height,attr"`
	Background    string      `xml:"bgcolor,attr,omitempty"`
	Regions       []xlfRegion `xml:"region"`
}

type xlfRegion struct {
	ID     string     `xml:"id,attr"`
	UserID string     `xml:"userId,attr"`
	Name   string     `xml:"name,attr"`
	Width  string     `xml:"width,attr"`
	Height string     `xml:"height,attr"`
	Top    string     `xml:"top,attr"`
	Left   string     `xml:"left,attr"`
	Media  []xlfMedia `xml:"media"`
}

type xlfMedia struct {
	ID       string      `xml:"id,attr"`
	Type     string      `xml:"type,attr"`
	UserID   string      `xml:"userid,attr"`
	Duration string      `xml:"duration,attr"`
	Options  *xlfOptions `xml:"options"`
	Raw      *xlfRaw     `xml:"raw"`
}

type xlfOptions struct {
	Items []xlfTextOption `xml:"option"`
}

type xlfRaw struct {
	Items []xlfCDataOption `xml:"option"`
}

type xlfTextOption struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xlfCDataOption struct {
	XMLName xml.Name
	Value   string `xml:",cdata"`
}

// EncodeXLF serializes a layout graph back into the legacy XLF format.
// Attribute options are written as escaped text, cdata options as CDATA
// sections. Regions and region specific widgets that have no persisted
// identifier receive deterministic ids so the document stays stable across
// encodes. Widgets of all playlists of a region are flattened in order.
func EncodeXLF(layout *Layout) ([]byte, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: layout is nil", ErrLayoutInvalid)
	}

	layoutKey := layout.ID.String()
	if layout.ID == uuid.Nil {
		layoutKey = layout.Name
	}

	doc := xlfDocument{
		SchemaVersion: strconv.Itoa(layout.SchemaVersion),
		Width:         formatFloat(layout.Width),
		Height:        formatFloat(layout.Height),
		Background:    layout.BackgroundColor,
		Regions:       make([]xlfRegion, 0, len(layout.Regions)),
	}

	for idx, region := range layout.Regions {
		if region == nil {
			continue
		}
		regionID := region.ID.String()
		if region.ID == uuid.Nil {
			regionID = identity.RegionToken(layoutKey, idx)
		}
		encoded := xlfRegion{
			ID:     regionID,
			UserID: strconv.Itoa(region.OwnerID),
			Name:   region.Name,
			Width:  formatFloat(region.Width),
			Height: formatFloat(region.Height),
			Top:    formatFloat(region.Top),
			Left:   formatFloat(region.Left),
		}

		position := 0
		for _, playlist := range region.Playlists {
			if playlist == nil {
				continue
			}
			for _, widget := range playlist.Widgets {
				if widget == nil {
					continue
				}
				media, err := encodeMedia(widget, regionID, position)
				if err != nil {
					return nil, err
				}
				encoded.Media = append(encoded.Media, media)
				position++
			}
		}
		doc.Regions = append(doc.Regions, encoded)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode xlf: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func encodeMedia(widget *Widget, regionID string, position int) (xlfMedia, error) {
	mediaID := ""
	switch {
	case len(widget.MediaIDs) > 0:
		mediaID = widget.MediaIDs[0]
	case widget.ID != uuid.Nil:
		mediaID = widget.ID.String()
	default:
		mediaID = identity.WidgetToken(regionID, position)
	}

	media := xlfMedia{
		ID:       mediaID,
		Type:     widget.Type,
		UserID:   strconv.Itoa(widget.OwnerID),
		Duration: strconv.Itoa(widget.Duration),
	}

	for _, option := range widget.Options {
		if option == nil {
			continue
		}
		if !isXMLName(option.Key) {
			return xlfMedia{}, fmt.Errorf("%w: option key %q is not a valid element name", ErrLayoutInvalid, option.Key)
		}
		name := xml.Name{Local: option.Key}
		switch option.Kind {
		case OptionKindCData:
			if media.Raw == nil {
				media.Raw = &xlfRaw{}
			}
			media.Raw.Items = append(media.Raw.Items, xlfCDataOption{XMLName: name, Value: option.Value})
		default:
			if media.Options == nil {
				media.Options = &xlfOptions{}
			}
			media.Options.Items = append(media.Options.Items, xlfTextOption{XMLName: name, Value: option.Value})
		}
	}
	return media, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func isXMLName(name string) bool {
	if name == "" {
		return false
	}
	for idx, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case idx > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}
