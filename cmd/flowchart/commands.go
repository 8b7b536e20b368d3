package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-flowchart"
)

type DefinitionArg struct {
	File string `arg:"" type:"path" help:"Workflow definition file (YAML or JSON)."`
}

type OutputFlag struct {
	Output string `short:"o" type:"path" help:"Write the updated definition here instead of stdout."`
}

func (d DefinitionArg) load(a *app) (*flowchart.Workflow, error) {
	data, err := os.ReadFile(d.File)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read definition").
			WithMetadata(map[string]any{"path": d.File})
	}
	def, err := flowchart.ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	w, err := flowchart.NewWorkflowFromDefinition(def,
		flowchart.WithLogger(a.logger),
		flowchart.WithTranslator(a.translator),
	)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded workflow %s from %s", w.Name, d.File)
	return w, nil
}

// write emits the workflow definition. A detached clone, when given, follows
// as a second YAML document.
func (o OutputFlag) write(a *app, w *flowchart.Workflow, detached any) error {
	def, err := w.Definition()
	if err != nil {
		return err
	}
	data, err := flowchart.MarshalDefinition(def)
	if err != nil {
		return err
	}
	if detached != nil {
		extra, err := yaml.Marshal(detached)
		if err != nil {
			return errors.Wrap(err, errors.CategoryHandler, "encode clone")
		}
		data = append(append(data, "---\n"...), extra...)
	}
	if o.Output == "" {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(o.Output, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "write definition").
			WithMetadata(map[string]any{"path": o.Output})
	}
	a.logger.Info("wrote %s", o.Output)
	return nil
}

type validateCmd struct {
	DefinitionArg
}

func (c *validateCmd) Run(a *app) error {
	w, err := c.load(a)
	if err != nil {
		return err
	}
	diags := w.Validate()
	if len(diags) > 0 {
		data, err := yaml.Marshal(map[string]any{"diagnostics": diags})
		if err != nil {
			return err
		}
		if _, err := a.out.Write(data); err != nil {
			return err
		}
	}
	if flowchart.HasErrors(diags) {
		return errors.New(fmt.Sprintf("workflow %s has %d diagnostics", w.Name, len(diags)), errors.CategoryValidation)
	}
	fmt.Fprintf(a.out, "workflow %s is valid\n", w.Name)
	return nil
}

type cloneStepCmd struct {
	DefinitionArg
	Step       string `arg:"" help:"Name of the step to clone."`
	SkipInsert bool   `help:"Leave the clone out of the workflow and print it as a second YAML document."`
	OutputFlag
}

func (c *cloneStepCmd) Run(a *app) error {
	w, err := c.load(a)
	if err != nil {
		return err
	}
	clone, err := w.CloneStep(c.Step, c.SkipInsert)
	if err != nil {
		return err
	}
	a.logger.Info("cloned step %s as %s", c.Step, clone.Name)
	if c.SkipInsert {
		return c.write(a, w, clone)
	}
	return c.write(a, w, nil)
}

type cloneTransitionCmd struct {
	DefinitionArg
	Transition string `arg:"" help:"Name of the transition to clone."`
	SkipInsert bool   `help:"Leave the clone out of the workflow and print it as a second YAML document."`
	OutputFlag
}

func (c *cloneTransitionCmd) Run(a *app) error {
	w, err := c.load(a)
	if err != nil {
		return err
	}
	clone, err := w.CloneTransition(c.Transition, c.SkipInsert)
	if err != nil {
		return err
	}
	a.logger.Info("cloned transition %s as %s", c.Transition, clone.Name)
	if c.SkipInsert {
		return c.write(a, w, clone)
	}
	return c.write(a, w, nil)
}

type attributeCmd struct {
	DefinitionArg
	PropertyPath string `arg:"" name:"property-path" help:"Property path such as entity.customer.name."`
	OutputFlag
}

func (c *attributeCmd) Run(a *app) error {
	w, err := c.load(a)
	if err != nil {
		return err
	}
	attr, err := w.GetOrAddAttributeByPropertyPath(c.PropertyPath)
	if err != nil {
		return err
	}
	a.logger.Info("attribute %s bound to %s", attr.Name, c.PropertyPath)
	return c.write(a, w, nil)
}

type fieldIDCmd struct {
	DefinitionArg
	Value   string `arg:"" help:"Property path, or field id with --reverse."`
	Fields  string `required:"" type:"existingfile" help:"Entity field metadata file (YAML or JSON)."`
	Reverse bool   `help:"Translate a field id back to a property path."`
}

func (c *fieldIDCmd) Run(a *app) error {
	w, err := c.load(a)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Fields)
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "read field metadata")
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "parse field metadata")
	}
	if err := w.SetEntityFieldsData(raw); err != nil {
		return err
	}

	var result string
	if c.Reverse {
		result, err = w.PropertyPathByFieldID(c.Value)
	} else {
		result, err = w.FieldIDByPropertyPath(c.Value)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, result)
	return nil
}
