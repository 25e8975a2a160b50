package rtlib

import (
	"fmt"
	"slices"
	"strings"

	"jstep/internal/types"
	"jstep/internal/vm"
)

type list struct {
	items []vm.Value
}

func listOf(o *vm.Object) *list {
	l, ok := o.Native.(*list)
	if !ok {
		l = &list{}
		o.Native = l
	}
	return l
}

func declareCollections(d *decl) {
	bt := d.tbl.Builtins()

	cmp := d.class("Comparable", types.KindInterface, types.NoTypeID, types.ClassAbstract)
	cmp.TypeParams = []types.TypeParam{{Name: "T", Type: d.tbl.TypeParam(cmp.ID, 0)}}
	d.abstract(cmp, "compareTo", bt.Int, param("other", cmp.TypeParams[0].Type))

	al := d.class("ArrayList", types.KindClass, d.object(), 0)
	e := d.tbl.TypeParam(al.ID, 0)
	al.TypeParams = []types.TypeParam{{Name: "E", Type: e}}

	items := func(c *vm.Call) *list { return listOf(c.This()) }
	bounds := func(c *vm.Call, i int32, n int) error {
		if i < 0 || int(i) >= n {
			return c.Throw("IndexOutOfBoundsException", fmt.Sprintf("Index %d out of bounds for length %d", i, n))
		}
		return nil
	}

	d.ctor(al, func(c *vm.Call) (vm.Value, error) {
		listOf(c.This())
		return vm.Null(), nil
	})
	d.method(al, "add", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		l := items(c)
		l.items = append(l.items, arg(c, 1))
		return vm.Bool(true), nil
	}, param("e", e))
	d.method(al, "add", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		l := items(c)
		i := arg(c, 1).AsInt()
		if i < 0 || int(i) > len(l.items) {
			return vm.Null(), c.Throw("IndexOutOfBoundsException", fmt.Sprintf("Index: %d, Size: %d", i, len(l.items)))
		}
		l.items = slices.Insert(l.items, int(i), arg(c, 2))
		return vm.Null(), nil
	}, param("index", bt.Int), param("e", e))
	d.method(al, "get", e, 0, func(c *vm.Call) (vm.Value, error) {
		l := items(c)
		i := arg(c, 1).AsInt()
		if err := bounds(c, i, len(l.items)); err != nil {
			return vm.Null(), err
		}
		return l.items[i], nil
	}, param("index", bt.Int))
	d.method(al, "set", e, 0, func(c *vm.Call) (vm.Value, error) {
		l := items(c)
		i := arg(c, 1).AsInt()
		if err := bounds(c, i, len(l.items)); err != nil {
			return vm.Null(), err
		}
		old := l.items[i]
		l.items[i] = arg(c, 2)
		return old, nil
	}, param("index", bt.Int), param("e", e))
	d.method(al, "remove", e, 0, func(c *vm.Call) (vm.Value, error) {
		l := items(c)
		i := arg(c, 1).AsInt()
		if err := bounds(c, i, len(l.items)); err != nil {
			return vm.Null(), err
		}
		old := l.items[i]
		l.items = slices.Delete(l.items, int(i), int(i)+1)
		return old, nil
	}, param("index", bt.Int))
	d.method(al, "size", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(int32(len(items(c).items))), nil // #nosec G115 -- длина ограничена heap
	})
	d.method(al, "isEmpty", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(len(items(c).items) == 0), nil
	})
	d.method(al, "clear", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		items(c).items = nil
		return vm.Null(), nil
	})
	indexOf := func(c *vm.Call) int {
		x := arg(c, 1)
		return slices.IndexFunc(items(c).items, func(v vm.Value) bool { return vm.Same(v, x) })
	}
	d.method(al, "indexOf", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(int32(indexOf(c))), nil // #nosec G115
	}, param("o", bt.Object))
	d.method(al, "contains", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(indexOf(c) >= 0), nil
	}, param("o", bt.Object))
	d.method(al, "toString", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		var sb strings.Builder
		sb.WriteByte('[')
		for i, v := range items(c).items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.lib.display(c, v))
		}
		sb.WriteByte(']')
		return vm.Str(sb.String()), nil
	})
}
