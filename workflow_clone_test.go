package flowchart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneTransitionDefinition(t *testing.T) {
	w := newTestWorkflow(t)
	source, _ := w.TransitionDefinitionByName("d1")

	cloned, err := w.CloneTransitionDefinition("d1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cloned.Name, "d1_clone_"))
	assert.Equal(t, source.Condition, cloned.Condition)
	assert.Equal(t, source.PostActions, cloned.PostActions)
	assert.True(t, w.TransitionDefinitions().Has(cloned.Name))
	assert.Equal(t, "d1", source.Name)
	assert.Equal(t, 2, w.TransitionDefinitions().Len())

	_, err = w.CloneTransitionDefinition("missing")
	assert.True(t, IsNotFound(err))
}

func TestCloneTransitionClonesDefinitionAndOptions(t *testing.T) {
	w := newTestWorkflow(t, WithTranslator(Catalog{CopyOfKey: "Copie de"}))
	source, _ := w.TransitionByName("t1")

	cloned, err := w.CloneTransition("t1", false)
	require.NoError(t, err)

	assert.NotEqual(t, source.Name, cloned.Name)
	assert.Equal(t, "Copie de Close", cloned.Label)
	assert.Equal(t, "s2", cloned.StepTo)
	assert.False(t, cloned.IsClone)
	assert.Equal(t, w.Handle(), cloned.Workflow())
	assert.True(t, w.Transitions().Has(cloned.Name))

	assert.NotEqual(t, "d1", cloned.TransitionDefinition)
	assert.True(t, w.TransitionDefinitions().Has(cloned.TransitionDefinition))
	assert.Equal(t, "d1", source.TransitionDefinition)

	assert.Equal(t, source.FrontendOptions, cloned.FrontendOptions)
	assert.Equal(t, source.FormOptions, cloned.FormOptions)

	cloned.FrontendOptions["icon"] = "icon-changed"
	cloned.FrontendOptions["class"].([]any)[0] = "changed"
	cloned.FormOptions["attribute_fields"].(map[string]any)["reason"].(map[string]any)["form_type"] = "textarea"

	assert.Equal(t, "icon-ok", source.FrontendOptions["icon"])
	assert.Equal(t, "btn", source.FrontendOptions["class"].([]any)[0])
	assert.Equal(t, "text", source.FormOptions["attribute_fields"].(map[string]any)["reason"].(map[string]any)["form_type"])
}

func TestCloneTransitionCopiesTypedNestedOptions(t *testing.T) {
	w := newTestWorkflow(t)
	source, _ := w.TransitionByName("t1")
	source.FrontendOptions = map[string]any{
		"attrs":   map[string]string{"class": "btn"},
		"buttons": []map[string]any{{"icon": "icon-ok"}},
		"sizes":   []int{1, 2},
	}

	cloned, err := w.CloneTransition("t1", true)
	require.NoError(t, err)

	cloned.FrontendOptions["attrs"].(map[string]string)["class"] = "changed"
	cloned.FrontendOptions["buttons"].([]map[string]any)[0]["icon"] = "changed"
	cloned.FrontendOptions["sizes"].([]int)[0] = 9

	assert.Equal(t, "btn", source.FrontendOptions["attrs"].(map[string]string)["class"])
	assert.Equal(t, "icon-ok", source.FrontendOptions["buttons"].([]map[string]any)[0]["icon"])
	assert.Equal(t, 1, source.FrontendOptions["sizes"].([]int)[0])
}

func TestCloneTransitionSkipInsert(t *testing.T) {
	w := newTestWorkflow(t)
	before := w.Transitions().Len()

	cloned, err := w.CloneTransition("t1", true)
	require.NoError(t, err)

	assert.True(t, cloned.IsClone)
	assert.Equal(t, true, cloned.Attributes()["_is_clone"])
	assert.False(t, w.Transitions().Has(cloned.Name))
	assert.Equal(t, before, w.Transitions().Len())
	// the definition copy is still registered so the clone stays resolvable
	assert.True(t, w.TransitionDefinitions().Has(cloned.TransitionDefinition))
}

func TestCloneTransitionWithoutDefinition(t *testing.T) {
	w := newTestWorkflow(t)

	cloned, err := w.CloneTransition("start", false)
	require.NoError(t, err)
	assert.Empty(t, cloned.TransitionDefinition)
	assert.Equal(t, 1, w.TransitionDefinitions().Len())
	assert.True(t, cloned.IsStart)
}

func TestCloneTransitionMissingDefinitionMutatesNothing(t *testing.T) {
	w := newTestWorkflow(t)
	require.NoError(t, w.Transitions().Add(&Transition{Name: "broken", TransitionDefinition: "ghost"}))
	before := w.Transitions().Names()

	_, err := w.CloneTransition("broken", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, before, w.Transitions().Names())
	assert.Equal(t, 1, w.TransitionDefinitions().Len())

	_, err = w.CloneTransition("missing", false)
	assert.True(t, IsNotFound(err))
}

func TestCloneStepScenario(t *testing.T) {
	w := newTestWorkflow(t)

	cloned, err := w.CloneStep("s1", false)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cloned.Name, "s1_clone_"))
	assert.Equal(t, "Copy of Open", cloned.Label)
	require.NotNil(t, cloned.Position)
	assert.Equal(t, Position{135, 135}, *cloned.Position)
	assert.Equal(t, w.Handle(), cloned.Workflow())
	assert.False(t, cloned.IsClone)

	require.Len(t, cloned.AllowedTransitions, 1)
	trName := cloned.AllowedTransitions[0]
	assert.NotEqual(t, "t1", trName)
	tr, ok := w.TransitionByName(trName)
	require.True(t, ok)
	assert.Equal(t, "s2", tr.StepTo)
	assert.NotEqual(t, "d1", tr.TransitionDefinition)
	assert.True(t, w.TransitionDefinitions().Has(tr.TransitionDefinition))

	assert.Equal(t, 3, w.Steps().Len())
	assert.Equal(t, 3, w.Transitions().Len())
	assert.Equal(t, 2, w.TransitionDefinitions().Len())

	source, _ := w.StepByName("s1")
	assert.Equal(t, []string{"t1"}, source.AllowedTransitions)
	assert.Equal(t, Position{100, 100}, *source.Position)
}

func TestCloneStepSkipInsertStillInsertsTransitions(t *testing.T) {
	w := newTestWorkflow(t)

	cloned, err := w.CloneStep("s1", true)
	require.NoError(t, err)

	assert.True(t, cloned.IsClone)
	assert.False(t, w.Steps().Has(cloned.Name))
	assert.Equal(t, 2, w.Steps().Len())
	require.Len(t, cloned.AllowedTransitions, 1)
	assert.True(t, w.Transitions().Has(cloned.AllowedTransitions[0]))

	tr, _ := w.TransitionByName(cloned.AllowedTransitions[0])
	assert.False(t, tr.IsClone)
}

func TestCloneStepPreservesTransitionOrder(t *testing.T) {
	w := newTestWorkflow(t)
	require.NoError(t, w.Transitions().Add(&Transition{Name: "t2", Label: "Hold"}))
	require.NoError(t, w.Steps().Update("s1", func(s *Step) {
		s.AllowedTransitions = []string{"t2", "t1"}
	}))

	cloned, err := w.CloneStep("s1", false)
	require.NoError(t, err)
	require.Len(t, cloned.AllowedTransitions, 2)

	first, _ := w.TransitionByName(cloned.AllowedTransitions[0])
	second, _ := w.TransitionByName(cloned.AllowedTransitions[1])
	assert.Equal(t, "Copy of Hold", first.Label)
	assert.Equal(t, "Copy of Close", second.Label)
}

func TestCloneStepWithoutPosition(t *testing.T) {
	w := newTestWorkflow(t)

	cloned, err := w.CloneStep("s2", false)
	require.NoError(t, err)
	assert.Nil(t, cloned.Position)
	assert.Empty(t, cloned.AllowedTransitions)
	assert.True(t, cloned.IsFinal)
}

func TestCloneStepIsAtomic(t *testing.T) {
	w := newTestWorkflow(t)
	require.NoError(t, w.Transitions().Add(&Transition{Name: "broken", TransitionDefinition: "ghost"}))
	require.NoError(t, w.Steps().Update("s1", func(s *Step) {
		s.AllowedTransitions = []string{"t1", "broken"}
	}))

	steps := w.Steps().Names()
	transitions := w.Transitions().Names()
	definitions := w.TransitionDefinitions().Names()

	_, err := w.CloneStep("s1", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	assert.Equal(t, steps, w.Steps().Names())
	assert.Equal(t, transitions, w.Transitions().Names())
	assert.Equal(t, definitions, w.TransitionDefinitions().Names())
}

func TestCloneStepSkipsNamesTakenInContainer(t *testing.T) {
	w := newTestWorkflow(t, WithIDGenerator(sequenceIDs("fixed", "other", "third")))
	// the third suffix is reserved for the step, which is already taken
	require.NoError(t, w.Steps().Add(&Step{Name: "s1_clone_third"}))

	transitions := w.Transitions().Names()
	definitions := w.TransitionDefinitions().Names()

	cloned, err := w.CloneStep("s1", false)
	require.NoError(t, err)
	assert.NotEqual(t, "s1_clone_third", cloned.Name)
	assert.Len(t, w.Transitions().Names(), len(transitions)+1)
	assert.Len(t, w.TransitionDefinitions().Names(), len(definitions)+1)
}

func TestCloneTxRollbackRemovesInserted(t *testing.T) {
	w := newTestWorkflow(t)
	tx := &cloneTx{}

	tr, _ := w.TransitionByName("t1")
	cloned, err := w.cloneTransition(tx, tr, false)
	require.NoError(t, err)
	require.True(t, w.Transitions().Has(cloned.Name))
	require.True(t, w.TransitionDefinitions().Has(cloned.TransitionDefinition))

	tx.rollback()
	assert.False(t, w.Transitions().Has(cloned.Name))
	assert.False(t, w.TransitionDefinitions().Has(cloned.TransitionDefinition))
	assert.Equal(t, []string{"start", "t1"}, w.Transitions().Names())
	assert.Equal(t, []string{"d1"}, w.TransitionDefinitions().Names())
}

func TestCloneNamesAreNeverReused(t *testing.T) {
	w := newTestWorkflow(t)

	first, err := w.CloneTransition("start", false)
	require.NoError(t, err)
	_, err = w.RemoveTransition(first.Name)
	require.NoError(t, err)

	second, err := w.CloneTransition("start", false)
	require.NoError(t, err)
	assert.NotEqual(t, first.Name, second.Name)
}

func TestCloneOfNilIsRejected(t *testing.T) {
	w := newTestWorkflow(t)

	_, err := w.CloneStepOf(nil, false)
	assert.True(t, IsValidation(err))
	_, err = w.CloneTransitionOf(nil, false)
	assert.True(t, IsValidation(err))
	_, err = w.CloneTransitionDefinitionOf(nil)
	assert.True(t, IsValidation(err))
}
