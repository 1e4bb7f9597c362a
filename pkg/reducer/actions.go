package reducer

import "github.com/matzehuels/flowlayout/pkg/flow"

// ActionType names an action on the wire.
type ActionType string

const (
	TypeInit                  ActionType = "Init"
	TypeAddElement            ActionType = "AddElement"
	TypeDeleteElement         ActionType = "DeleteElement"
	TypeAddFault              ActionType = "AddFault"
	TypeDeleteFault           ActionType = "DeleteFault"
	TypeConnectToElement      ActionType = "ConnectToElement"
	TypeCreateGoToConnection  ActionType = "CreateGoToConnection"
	TypeDeleteGoToConnection  ActionType = "DeleteGoToConnection"
	TypeUpdateChildren        ActionType = "UpdateChildren"
	TypeDecorateCanvas        ActionType = "DecorateCanvas"
	TypeClearCanvasDecoration ActionType = "ClearCanvasDecoration"
)

// Types lists every action type Reduce handles, in declaration order.
var Types = []ActionType{
	TypeInit,
	TypeAddElement,
	TypeDeleteElement,
	TypeAddFault,
	TypeDeleteFault,
	TypeConnectToElement,
	TypeCreateGoToConnection,
	TypeDeleteGoToConnection,
	TypeUpdateChildren,
	TypeDecorateCanvas,
	TypeClearCanvasDecoration,
}

// Action is one edit of a process graph.
type Action interface {
	Type() ActionType
}

// Init replaces the graph. A nil Graph starts a new flow holding a start
// element followed by an end element.
type Init struct {
	Graph *flow.Graph `json:"-" yaml:"-"`
}

// AddElement inserts a new element into Source. The element takes over
// whatever the slot held: the previous content becomes its continuation and
// a go-to on the slot moves to the element's next slot. Element's GUID is
// generated when empty; its Next, Fault and Children are ignored.
type AddElement struct {
	Source  flow.Slot `json:"source" yaml:"source"`
	Element flow.Node `json:"element" yaml:"element"`
}

// DeleteElement removes an element together with its fault branch and every
// branch except ChildIndexToKeep. The kept branch takes the element's place.
type DeleteElement struct {
	ElementID        string `json:"elementId" yaml:"elementId"`
	ChildIndexToKeep *int   `json:"childIndexToKeep,omitempty" yaml:"childIndexToKeep,omitempty"`
}

// AddFault attaches a fault branch ending in a new end element.
type AddFault struct {
	ElementID string `json:"elementId" yaml:"elementId"`
	// EndID is the GUID of the new end element, generated when empty.
	EndID string `json:"endId,omitempty" yaml:"endId,omitempty"`
}

// DeleteFault removes an element's fault branch.
type DeleteFault struct {
	ElementID string `json:"elementId" yaml:"elementId"`
}

// ConnectToElement connects an open slot to an existing element. A slot
// holding only an end element counts as open; the end element is removed.
// When IsMergeableTarget is set the target must be where the slot's branch
// merges back, and the slot is simply left empty. Otherwise a go-to edge is
// created.
type ConnectToElement struct {
	Source            flow.Slot `json:"source" yaml:"source"`
	TargetID          string    `json:"targetId" yaml:"targetId"`
	IsMergeableTarget bool      `json:"isMergeableTarget,omitempty" yaml:"isMergeableTarget,omitempty"`
}

// CreateGoToConnection creates a go-to edge from branch BranchIndex of
// SourceID, or from its next slot when BranchIndex is [flow.NextIndex].
type CreateGoToConnection struct {
	SourceID    string `json:"sourceId" yaml:"sourceId"`
	BranchIndex int    `json:"branchIndex" yaml:"branchIndex"`
	TargetID    string `json:"targetId" yaml:"targetId"`
}

// DeleteGoToConnection removes a go-to edge. The slot is closed with a new
// end element so that the branch stays terminal.
type DeleteGoToConnection struct {
	SourceID    string `json:"sourceId" yaml:"sourceId"`
	BranchIndex int    `json:"branchIndex" yaml:"branchIndex"`
	EndID       string `json:"endId,omitempty" yaml:"endId,omitempty"`
}

// UpdateChildren replaces the outcome list of a branching element. Branches
// are matched to references by name: matched branches move to their new
// position, branches whose reference disappeared are deleted and new
// references get an empty branch. The default branch stays last.
type UpdateChildren struct {
	ParentID   string                `json:"parentId" yaml:"parentId"`
	References []flow.ChildReference `json:"references" yaml:"references"`
}

// DecorateCanvas sets the highlight overlay.
type DecorateCanvas struct {
	Decoration flow.Decoration `json:"decoration" yaml:"decoration"`
}

// ClearCanvasDecoration removes every highlight.
type ClearCanvasDecoration struct{}

// Unrecognized carries an action type outside the closed set. Reduce
// returns its input unchanged for it.
type Unrecognized struct {
	Name string `json:"type" yaml:"type"`
}

func (Init) Type() ActionType                  { return TypeInit }
func (AddElement) Type() ActionType            { return TypeAddElement }
func (DeleteElement) Type() ActionType         { return TypeDeleteElement }
func (AddFault) Type() ActionType              { return TypeAddFault }
func (DeleteFault) Type() ActionType           { return TypeDeleteFault }
func (ConnectToElement) Type() ActionType      { return TypeConnectToElement }
func (CreateGoToConnection) Type() ActionType  { return TypeCreateGoToConnection }
func (DeleteGoToConnection) Type() ActionType  { return TypeDeleteGoToConnection }
func (UpdateChildren) Type() ActionType        { return TypeUpdateChildren }
func (DecorateCanvas) Type() ActionType        { return TypeDecorateCanvas }
func (ClearCanvasDecoration) Type() ActionType { return TypeClearCanvasDecoration }
func (u Unrecognized) Type() ActionType        { return ActionType(u.Name) }
