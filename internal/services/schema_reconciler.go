package services

import (
	"reflect"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// FieldDelta is the set/unset pair that brings a stored document in line
// with a caller's replacement document.
type FieldDelta struct {
	Set   map[string]any
	Unset []string // sorted
}

// IsNoOp reports whether applying d to stored would change nothing.
func (d FieldDelta) IsNoOp(stored map[string]any) bool {
	if len(d.Unset) > 0 {
		return false
	}
	for key, value := range d.Set {
		current, ok := stored[key]
		if !ok || !sameValue(current, value) {
			return false
		}
	}
	return true
}

// SchemaReconciler computes field deltas for flexible-schema documents.
// Protected keys are never scheduled for removal.
type SchemaReconciler struct {
	protected map[string]struct{}
}

// NewSchemaReconciler creates a reconciler guarding the given keys.
func NewSchemaReconciler(protected ...string) *SchemaReconciler {
	return &SchemaReconciler{
		protected: lo.SliceToMap(protected, func(k string) (string, struct{}) { return k, struct{}{} }),
	}
}

// Reconcile returns the delta that turns stored into a document whose keys
// are exactly the protected keys plus the keys of supplied. Every supplied
// pair is set; every other unprotected stored key is unset.
func (r *SchemaReconciler) Reconcile(stored, supplied map[string]any) FieldDelta {
	unset := lo.Filter(lo.Keys(stored), func(key string, _ int) bool {
		if _, ok := r.protected[key]; ok {
			return false
		}
		_, kept := supplied[key]
		return !kept
	})
	sort.Strings(unset)

	set := make(map[string]any, len(supplied))
	for key, value := range supplied {
		set[key] = value
	}
	return FieldDelta{Set: set, Unset: unset}
}

// IsProtected reports whether key is guarded against removal.
func (r *SchemaReconciler) IsProtected(key string) bool {
	_, ok := r.protected[key]
	return ok
}

// sameValue compares document values, treating numbers of different Go
// types as equal when they hold the same value.
func sameValue(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return cast.ToFloat64(a) == cast.ToFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
