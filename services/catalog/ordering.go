package catalog

import (
	"fmt"
	"sort"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

// Assignment moves one child to a target position within its parent.
type Assignment struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

// siblings is one ordered group: the children of a single parent.
type siblings struct {
	model    any
	parent   string
	parentID uint
	liveOnly bool
}

func sectionSiblings(courseID uint) siblings {
	return siblings{model: &courseModels.Section{}, parent: "course_id", parentID: courseID, liveOnly: true}
}

func resourceSiblings(sectionID uint) siblings {
	return siblings{model: &courseModels.Resource{}, parent: "section_id", parentID: sectionID, liveOnly: true}
}

// Quizzes are hard-deleted, so every row is live.
func quizSiblings(resourceID uint) siblings {
	return siblings{model: &courseModels.Quiz{}, parent: "resource_id", parentID: resourceID}
}

func (g siblings) scope(tx *gorm.DB) *gorm.DB {
	q := tx.Model(g.model).Where(g.parent+" = ?", g.parentID)
	if g.liveOnly {
		q = q.Where("is_deleted = ?", false)
	}
	return q
}

type orderedChild struct {
	ID         uint
	OrderIndex int
}

func (g siblings) children(tx *gorm.DB) ([]orderedChild, error) {
	var rows []orderedChild
	err := g.scope(tx).
		Select("id", "order_index").
		Order("order_index asc").Order("id asc").
		Scan(&rows).Error
	return rows, err
}

// nextOrder returns max(order)+1 over live siblings, 1 for an empty group.
func (g siblings) nextOrder(tx *gorm.DB) (int, error) {
	var maxOrder int
	if err := g.scope(tx).Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

// renumber assigns 1..N to ids in the given order. ids must be exactly the
// live group. Orders are parked at their negation first so the partial
// unique index never sees two live rows sharing a position.
func (g siblings) renumber(tx *gorm.DB, ids []uint) error {
	current, err := g.children(tx)
	if err != nil {
		return err
	}
	if len(current) != len(ids) {
		return fmt.Errorf("renumber %s group %d: have %d children, got %d ids", g.parent, g.parentID, len(current), len(ids))
	}
	dense := true
	for i := range current {
		if current[i].ID != ids[i] || current[i].OrderIndex != i+1 {
			dense = false
			break
		}
	}
	if dense {
		return nil
	}

	if err := g.scope(tx).Where("order_index > ?", 0).
		UpdateColumn("order_index", gorm.Expr("-order_index")).Error; err != nil {
		return err
	}
	for i, id := range ids {
		if err := tx.Model(g.model).Where("id = ?", id).
			UpdateColumn("order_index", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// compact closes gaps left behind by removed children.
func (g siblings) compact(tx *gorm.DB) error {
	current, err := g.children(tx)
	if err != nil {
		return err
	}
	ids := make([]uint, len(current))
	for i, c := range current {
		ids[i] = c.ID
	}
	return g.renumber(tx, ids)
}

// moveTo places id at position (1-based, clamped to the group) and shifts
// the others to keep the sequence dense.
func (g siblings) moveTo(tx *gorm.DB, id uint, position int) error {
	current, err := g.children(tx)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(current))
	found := false
	for _, c := range current {
		if c.ID == id {
			found = true
			continue
		}
		ids = append(ids, c.ID)
	}
	if !found {
		return fmt.Errorf("move: child %d not in %s group %d", id, g.parent, g.parentID)
	}
	if position < 1 {
		position = 1
	}
	if position > len(ids)+1 {
		position = len(ids) + 1
	}
	ids = append(ids, 0)
	copy(ids[position:], ids[position-1:])
	ids[position-1] = id
	return g.renumber(tx, ids)
}

// reorder applies a batch of assignments and normalizes the whole group.
// Children not mentioned keep their relative order; on equal targets an
// assigned child is placed before an unassigned one.
func (g siblings) reorder(tx *gorm.DB, assignments []Assignment) error {
	if len(assignments) == 0 {
		return apperrors.Validation("at least one assignment is required")
	}
	current, err := g.children(tx)
	if err != nil {
		return err
	}

	live := make(map[uint]int, len(current))
	for _, c := range current {
		live[c.ID] = c.OrderIndex
	}

	target := make(map[uint]int, len(assignments))
	usedOrders := make(map[int]bool, len(assignments))
	for _, a := range assignments {
		if a.Order < 1 {
			return apperrors.Validation("order must be at least 1", apperrors.Issue{Field: "order", Message: fmt.Sprintf("child %d has order %d", a.ID, a.Order)})
		}
		if _, ok := live[a.ID]; !ok {
			return apperrors.Validation("foreign or missing child", apperrors.Issue{Field: "id", Message: fmt.Sprintf("child %d is not in this group", a.ID)})
		}
		if _, dup := target[a.ID]; dup {
			return apperrors.Validation("duplicate child", apperrors.Issue{Field: "id", Message: fmt.Sprintf("child %d is assigned twice", a.ID)})
		}
		if usedOrders[a.Order] {
			return apperrors.Validation("duplicate order", apperrors.Issue{Field: "order", Message: fmt.Sprintf("order %d is assigned twice", a.Order)})
		}
		target[a.ID] = a.Order
		usedOrders[a.Order] = true
	}

	type slot struct {
		id       uint
		order    int
		assigned bool
	}
	slots := make([]slot, 0, len(current))
	for _, c := range current {
		s := slot{id: c.ID, order: c.OrderIndex}
		if o, ok := target[c.ID]; ok {
			s.order, s.assigned = o, true
		}
		slots = append(slots, s)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].order != slots[j].order {
			return slots[i].order < slots[j].order
		}
		if slots[i].assigned != slots[j].assigned {
			return slots[i].assigned
		}
		return slots[i].id < slots[j].id
	})

	ids := make([]uint, len(slots))
	for i, s := range slots {
		ids[i] = s.id
	}
	return g.renumber(tx, ids)
}
