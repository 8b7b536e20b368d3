package dashboard

import (
	"os"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// StaticWidgetConfigs holds widget attributes keyed by widget name.
type StaticWidgetConfigs map[string]map[string]any

type widgetFile struct {
	Widgets map[string]map[string]any `yaml:"widgets"`
}

// ParseWidgetConfigs reads a YAML document of the form
//
//	widgets:
//	  recent_emails:
//	    label: Recent emails
func ParseWidgetConfigs(data []byte) (StaticWidgetConfigs, error) {
	var file widgetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "parse widget configs").
			WithTextCode(ErrCodeWidgetConfig)
	}
	if file.Widgets == nil {
		return StaticWidgetConfigs{}, nil
	}
	return StaticWidgetConfigs(file.Widgets), nil
}

// LoadWidgetConfigs reads widget configs from path.
func LoadWidgetConfigs(path string) (StaticWidgetConfigs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read widget configs").
			WithTextCode(ErrCodeWidgetConfig).
			WithMetadata(map[string]any{"path": path})
	}
	return ParseWidgetConfigs(data)
}

// WidgetAttributes returns a copy of the widget attributes. Unknown widgets have none.
func (c StaticWidgetConfigs) WidgetAttributes(widget string) (map[string]any, error) {
	attrs := c[widget]
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out, nil
}
