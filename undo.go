package main

// restoreNode re-adds a deleted node under its original id, style and
// geometry.
func restoreNode(d *Diagram, rec Node) {
	n, err := d.AddNodeWithID(rec.ID, rec.Type, rec.X, rec.Y, rec.Label, nil)
	if err != nil {
		return
	}
	n.Style = rec.Style
	n.Description = rec.Description
	if rec.Task != nil {
		task := *rec.Task
		n.Task = &task
	}
	n.Width = rec.Width
	n.Height = rec.Height
}

func restoreConnector(d *Diagram, rec Connector) {
	style := rec.Style
	if id, err := d.Connectors().CreateWithID(rec.ID, rec.FromID, rec.ToID, &style); err == nil {
		if c, ok := d.Connectors().Connector(id); ok {
			c.Anchor = rec.Anchor
			c.Label = rec.Label
			d.Connectors().Reroute(id)
		}
	}
}

func (m *model) undo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.undoStack) == 0 {
		return
	}
	d := m.getDiagram()

	lastIndex := len(buf.undoStack) - 1
	action := buf.undoStack[lastIndex]
	buf.undoStack = buf.undoStack[:lastIndex]

	d.Scheduler().Gesture(func() {
		switch action.Type {
		case ActionAddNode:
			data := action.Data.(AddNodeData)
			d.RemoveNode(data.ID)
		case ActionDeleteNode:
			data := action.Data.(DeleteNodeData)
			restoreNode(d, data.Node)
			for _, conn := range data.Connectors {
				restoreConnector(d, conn)
			}
		case ActionEditLabel:
			data := action.Data.(EditLabelData)
			d.SetNodeLabel(data.ID, data.OldLabel)
		case ActionResizeNode:
			data := action.Inverse.(OriginalNodeState)
			d.SetNodeSize(data.ID, data.Width, data.Height)
		case ActionMoveNode:
			data := action.Inverse.(OriginalNodeState)
			d.SetNodePosition(data.ID, data.X, data.Y)
		case ActionAddConnector:
			data := action.Data.(AddConnectorData)
			d.Connectors().Remove(data.Connector.ID)
		case ActionDeleteConnector:
			data := action.Data.(AddConnectorData)
			restoreConnector(d, data.Connector)
		case ActionStyleConnector:
			data := action.Data.(StyleConnectorData)
			d.Connectors().ApplyStyleField(data.ID, data.Field, data.OldValue)
		case ActionStyleNode:
			data := action.Data.(StyleNodeData)
			m.applyNodeField(data.ID, data.Field, data.OldValue)
		case ActionInstantiate:
			data := action.Data.(InstantiateData)
			for _, id := range data.ConnIDs {
				d.Connectors().Remove(id)
			}
			for _, id := range data.NodeIDs {
				d.RemoveNode(id)
			}
		}
	})

	buf.redoStack = append(buf.redoStack, action)
}

func (m *model) redo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.redoStack) == 0 {
		return
	}
	d := m.getDiagram()

	lastIndex := len(buf.redoStack) - 1
	action := buf.redoStack[lastIndex]
	buf.redoStack = buf.redoStack[:lastIndex]

	d.Scheduler().Gesture(func() {
		switch action.Type {
		case ActionAddNode:
			data := action.Data.(AddNodeData)
			if _, err := d.AddNodeWithID(data.ID, data.Type, data.X, data.Y, data.Label, nil); err != nil {
				return
			}
		case ActionDeleteNode:
			data := action.Data.(DeleteNodeData)
			d.RemoveNode(data.Node.ID)
		case ActionEditLabel:
			data := action.Data.(EditLabelData)
			d.SetNodeLabel(data.ID, data.NewLabel)
		case ActionResizeNode:
			data := action.Data.(OriginalNodeState)
			d.SetNodeSize(data.ID, data.Width, data.Height)
		case ActionMoveNode:
			data := action.Data.(MoveNodeData)
			d.MoveNode(data.ID, data.DeltaX, data.DeltaY)
		case ActionAddConnector:
			data := action.Data.(AddConnectorData)
			restoreConnector(d, data.Connector)
		case ActionDeleteConnector:
			data := action.Data.(AddConnectorData)
			d.Connectors().Remove(data.Connector.ID)
		case ActionStyleConnector:
			data := action.Data.(StyleConnectorData)
			d.Connectors().ApplyStyleField(data.ID, data.Field, data.NewValue)
		case ActionStyleNode:
			data := action.Data.(StyleNodeData)
			m.applyNodeField(data.ID, data.Field, data.NewValue)
		case ActionInstantiate:
			data := action.Data.(InstantiateData)
			for _, node := range data.Nodes {
				restoreNode(d, node)
			}
			for _, conn := range data.Connectors {
				restoreConnector(d, conn)
			}
		}
	})

	buf.undoStack = append(buf.undoStack, action)
}

// applyNodeField routes an undo/redo style write through the bridge so
// the panel stays in sync when the node is selected.
func (m *model) applyNodeField(id, field, value string) {
	bridge := m.getBridge()
	if bridge == nil {
		return
	}
	if bridge.Selection().Kind == SelectNode && bridge.Selection().ID == id {
		bridge.Apply(field, value)
		return
	}
	if n, ok := m.getDiagram().Node(id); ok {
		prev := bridge.Selection()
		bridge.Select(n)
		bridge.Apply(field, value)
		switch prev.Kind {
		case SelectNone:
			bridge.Deselect()
		case SelectConnector:
			if c, ok := m.getDiagram().Connectors().Connector(prev.ID); ok {
				bridge.Select(c)
			} else {
				bridge.Deselect()
			}
		case SelectNode:
			if pn, ok := m.getDiagram().Node(prev.ID); ok {
				bridge.Select(pn)
			} else {
				bridge.Deselect()
			}
		}
	}
}
