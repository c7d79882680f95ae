package sch

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/record"
)

// Document bundles a scene with its persistent surroundings: the scene
// rectangle and (de)serialization to the record text format.
type Document struct {
	Scene     *Scene
	SceneRect geometry.Rect
}

// NewDocument creates a document with an empty scene.
func NewDocument(settings Settings) *Document {
	return &Document{
		Scene:     NewScene(settings),
		SceneRect: geometry.Rect{Width: 3000, Height: 2000},
	}
}

// ToRecord serializes the document.
func (d *Document) ToRecord() *record.Record {
	root := record.New()

	scene := record.New()
	rect := record.New()
	rect.AddFloat("x", d.SceneRect.X)
	rect.AddFloat("y", d.SceneRect.Y)
	rect.AddFloat("width", d.SceneRect.Width)
	rect.AddFloat("height", d.SceneRect.Height)
	scene.AddChild("rect", rect)
	root.AddChild("scene", scene)

	nodes := record.New()
	for _, n := range d.Scene.Nodes() {
		nodes.AddChild("node", n.ToRecord())
	}
	root.AddChild("nodes", nodes)

	nets := record.New()
	for _, n := range d.Scene.Nets() {
		nets.AddChild("net", n.ToRecord())
	}
	root.AddChild("nets", nets)

	return root
}

// FromRecord replaces the document contents with the serialized state.
// Recoverable problems (missing sections, malformed nodes or wires)
// are skipped and reported as warnings. Net memberships are restored
// as stored, without re-deriving connectivity. The undo history is
// cleared.
func (d *Document) FromRecord(root *record.Record) ([]string, error) {
	if root == nil {
		return nil, fmt.Errorf("nil document record")
	}
	var warnings []string

	d.Scene.Clear()

	if scene := root.Child("scene"); scene != nil {
		if rect := scene.Child("rect"); rect != nil {
			d.SceneRect = geometry.Rect{
				X:      rect.FloatOr("x", 0),
				Y:      rect.FloatOr("y", 0),
				Width:  rect.FloatOr("width", 3000),
				Height: rect.FloatOr("height", 2000),
			}
		}
	} else {
		warnings = append(warnings, "document has no scene section")
	}

	if nodes := root.Child("nodes"); nodes != nil {
		for _, nr := range nodes.Children("node") {
			n, w, err := NodeFromRecord(nr)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, "skipping node: "+err.Error())
				continue
			}
			d.Scene.AddItem(n)
		}
	}

	if nets := root.Child("nets"); nets != nil {
		for _, nr := range nets.Children("net") {
			net, w := netFromRecord(nr)
			warnings = append(warnings, w...)
			for _, wire := range net.Wires() {
				d.Scene.AddItem(wire)
			}
			d.Scene.adoptNet(net)
		}
	}

	d.Scene.CommandStack().Clear()
	return warnings, nil
}

// Save writes the document to a writer in the record text format.
func (d *Document) Save(w io.Writer) error {
	if err := d.ToRecord().Encode(w); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// SaveFile writes the document to a file and marks the scene clean.
func (d *Document) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()
	if err := d.Save(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	d.Scene.ClearDirty()
	return nil
}

// Load reads a document from a reader.
func (d *Document) Load(r io.Reader) ([]string, error) {
	root, err := record.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return d.FromRecord(root)
}

// LoadFile reads a document from a file.
func (d *Document) LoadFile(filename string) ([]string, error) {
	root, err := record.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	return d.FromRecord(root)
}
