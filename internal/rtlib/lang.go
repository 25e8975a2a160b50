package rtlib

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"jstep/internal/types"
	"jstep/internal/vm"
)

func declareObject(d *decl) {
	c := d.class("Object", types.KindClass, types.NoTypeID, 0)
	d.tbl.SetObject(c)
	bt := d.tbl.Builtins()
	d.ctor(c, func(*vm.Call) (vm.Value, error) { return vm.Null(), nil })
	d.lib.toString = d.method(c, "toString", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(c.String(c.Receiver())), nil
	}).ID
	d.method(c, "equals", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(vm.Same(c.Receiver(), arg(c, 1))), nil
	}, param("other", c.Type))
	d.method(c, "hashCode", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(hashOf(c.Receiver())), nil
	})
}

func hashOf(v vm.Value) int32 {
	switch v.Kind {
	case vm.VKString:
		return stringHash(v.S)
	case vm.VKObject:
		return int32(v.Object().ID()) // #nosec G115 -- хэш может переполняться
	case vm.VKArray:
		return int32(v.Array().ID()) // #nosec G115
	case vm.VKDouble:
		b := math.Float64bits(v.F)
		return int32(b ^ b>>32) // #nosec G115
	}
	return v.AsInt()
}

func stringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

// Strings are indexed by UTF-16 code units.
func units(s string) []uint16         { return utf16.Encode([]rune(s)) }
func fromUnits(u []uint16) string     { return string(utf16.Decode(u)) }
func recvString(c *vm.Call) string    { return c.Receiver().S }
func strArg(c *vm.Call, i int) string { return str(arg(c, i)) }

func declareString(d *decl) {
	bt := d.tbl.Builtins()
	c := d.class("String", types.KindClass, d.object(), types.ClassFinal)
	d.tbl.BindString(c)
	s := bt.String

	d.method(c, "length", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(int32(len(units(recvString(c))))), nil // #nosec G115
	})
	d.method(c, "isEmpty", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(recvString(c) == ""), nil
	})
	d.method(c, "charAt", bt.Char, 0, func(c *vm.Call) (vm.Value, error) {
		u := units(recvString(c))
		i := arg(c, 1).AsInt()
		if i < 0 || int(i) >= len(u) {
			return vm.Null(), c.Throw("StringIndexOutOfBoundsException", "index "+strconv.Itoa(int(i))+", length "+strconv.Itoa(len(u)))
		}
		return vm.Char(u[i]), nil
	}, param("index", bt.Int))
	substring := func(c *vm.Call) (vm.Value, error) {
		u := units(recvString(c))
		begin, end := int(arg(c, 1).AsInt()), len(u)
		if len(c.Args) > 2 {
			end = int(arg(c, 2).AsInt())
		}
		if begin < 0 || end > len(u) || begin > end {
			return vm.Null(), c.Throw("StringIndexOutOfBoundsException",
				"begin "+strconv.Itoa(begin)+", end "+strconv.Itoa(end)+", length "+strconv.Itoa(len(u)))
		}
		return vm.Str(fromUnits(u[begin:end])), nil
	}
	d.method(c, "substring", s, 0, substring, param("beginIndex", bt.Int))
	d.method(c, "substring", s, 0, substring, param("beginIndex", bt.Int), param("endIndex", bt.Int))
	d.method(c, "indexOf", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		r := recvString(c)
		i := strings.Index(r, strArg(c, 1))
		if i < 0 {
			return vm.Int(-1), nil
		}
		return vm.Int(int32(len(units(r[:i])))), nil // #nosec G115
	}, param("str", s))
	d.method(c, "contains", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(strings.Contains(recvString(c), strArg(c, 1))), nil
	}, param("s", s))
	d.method(c, "startsWith", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(strings.HasPrefix(recvString(c), strArg(c, 1))), nil
	}, param("prefix", s))
	d.method(c, "endsWith", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Bool(strings.HasSuffix(recvString(c), strArg(c, 1))), nil
	}, param("suffix", s))
	d.method(c, "equals", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		o := arg(c, 1)
		return vm.Bool(o.Kind == vm.VKString && o.S == recvString(c)), nil
	}, param("other", d.object()))
	d.method(c, "equalsIgnoreCase", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		o := arg(c, 1)
		return vm.Bool(o.Kind == vm.VKString && strings.EqualFold(o.S, recvString(c))), nil
	}, param("other", s))
	d.method(c, "compareTo", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		a, b := units(recvString(c)), units(strArg(c, 1))
		for i := 0; i < len(a) && i < len(b); i++ {
			if a[i] != b[i] {
				return vm.Int(int32(a[i]) - int32(b[i])), nil
			}
		}
		return vm.Int(int32(len(a) - len(b))), nil // #nosec G115
	}, param("other", s))
	d.method(c, "toUpperCase", s, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strings.ToUpper(recvString(c))), nil
	})
	d.method(c, "toLowerCase", s, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strings.ToLower(recvString(c))), nil
	})
	d.method(c, "trim", s, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strings.TrimFunc(recvString(c), func(r rune) bool { return r <= ' ' })), nil
	})
	d.method(c, "replace", s, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strings.ReplaceAll(recvString(c), strArg(c, 1), strArg(c, 2))), nil
	}, param("target", s), param("replacement", s))
	d.method(c, "split", d.tbl.ArrayOf(s), 0, func(c *vm.Call) (vm.Value, error) {
		parts := strings.Split(recvString(c), strArg(c, 1))
		for len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		arr := c.Pool.NewArray(c.Types().ArrayOf(c.Types().Builtins().String), len(parts))
		for i, p := range parts {
			arr.Items[i] = vm.Str(p)
		}
		return vm.Arr(arr), nil
	}, param("separator", s))
	d.method(c, "toCharArray", d.tbl.ArrayOf(bt.Char), 0, func(c *vm.Call) (vm.Value, error) {
		u := units(recvString(c))
		arr := c.Pool.NewArray(c.Types().ArrayOf(c.Types().Builtins().Char), len(u))
		for i, x := range u {
			arr.Items[i] = vm.Char(x)
		}
		return vm.Arr(arr), nil
	})
	d.method(c, "toString", s, 0, func(c *vm.Call) (vm.Value, error) {
		return c.Receiver(), nil
	})
	d.method(c, "hashCode", bt.Int, 0, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(stringHash(recvString(c))), nil
	})
	d.static(c, "valueOf", s, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strArg(c, 0)), nil
	}, text("value", d.object()))
}

func declareEnum(d *decl) {
	bt := d.tbl.Builtins()
	c := d.class("Enum", types.KindClass, d.object(), types.ClassAbstract)
	d.hidden(c, "$name", bt.String)
	d.hidden(c, "$ordinal", bt.Int)
	field := func(c *vm.Call, name string) vm.Value {
		o := c.This()
		a := c.Types().Attr(o.Class, name)
		return o.Attrs[a.Index]
	}
	d.method(c, "name", bt.String, types.MethodFinal, func(c *vm.Call) (vm.Value, error) {
		return field(c, "$name"), nil
	})
	d.method(c, "ordinal", bt.Int, types.MethodFinal, func(c *vm.Call) (vm.Value, error) {
		return field(c, "$ordinal"), nil
	})
	d.method(c, "toString", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		return field(c, "$name"), nil
	})
	d.method(c, "compareTo", bt.Int, types.MethodFinal, func(c *vm.Call) (vm.Value, error) {
		other := arg(c, 1).Object()
		if other == nil {
			return vm.Null(), c.Throw("NullPointerException", "")
		}
		a := c.Types().Attr(other.Class, "$ordinal")
		return vm.Int(field(c, "$ordinal").AsInt() - other.Attrs[a.Index].AsInt()), nil
	}, param("other", c.Type))
}

func declareMath(d *decl) {
	bt := d.tbl.Builtins()
	c := d.class("Math", types.KindClass, d.object(), types.ClassFinal)
	num := func(f float64) vm.NativeFunc {
		return func(*vm.Call) (vm.Value, error) { return vm.Double(f), nil }
	}
	d.constant(c, "PI", bt.Double, num(math.Pi))
	d.constant(c, "E", bt.Double, num(math.E))

	d1 := func(name string, fn func(float64) float64) {
		d.static(c, name, bt.Double, func(c *vm.Call) (vm.Value, error) {
			return vm.Double(fn(arg(c, 0).AsDouble())), nil
		}, param("a", bt.Double))
	}
	d1("sqrt", math.Sqrt)
	d1("floor", math.Floor)
	d1("ceil", math.Ceil)
	d1("sin", math.Sin)
	d1("cos", math.Cos)
	d1("abs", math.Abs)
	d.static(c, "abs", bt.Int, func(c *vm.Call) (vm.Value, error) {
		n := arg(c, 0).AsInt()
		if n < 0 {
			n = -n
		}
		return vm.Int(n), nil
	}, param("a", bt.Int))
	d.static(c, "pow", bt.Double, func(c *vm.Call) (vm.Value, error) {
		return vm.Double(math.Pow(arg(c, 0).AsDouble(), arg(c, 1).AsDouble())), nil
	}, param("a", bt.Double), param("b", bt.Double))
	d.static(c, "round", bt.Int, func(c *vm.Call) (vm.Value, error) {
		return vm.Int(vm.Double(math.Floor(arg(c, 0).AsDouble() + 0.5)).AsInt()), nil
	}, param("a", bt.Double))
	d.static(c, "random", bt.Double, func(*vm.Call) (vm.Value, error) {
		return vm.Double(rand.Float64()), nil // #nosec G404 -- учебная программа, не криптография
	})
	for _, name := range []string{"max", "min"} {
		pick := name == "max"
		d.static(c, name, bt.Int, func(c *vm.Call) (vm.Value, error) {
			a, b := arg(c, 0).AsInt(), arg(c, 1).AsInt()
			if (a > b) == pick {
				return vm.Int(a), nil
			}
			return vm.Int(b), nil
		}, param("a", bt.Int), param("b", bt.Int))
		d.static(c, name, bt.Double, func(c *vm.Call) (vm.Value, error) {
			a, b := arg(c, 0).AsDouble(), arg(c, 1).AsDouble()
			if pick {
				return vm.Double(math.Max(a, b)), nil
			}
			return vm.Double(math.Min(a, b)), nil
		}, param("a", bt.Double), param("b", bt.Double))
	}
}

// declareBoxes declares the static helpers of Integer, Double and
// Character. As types these names denote the primitives.
func declareBoxes(d *decl) {
	bt := d.tbl.Builtins()

	i := d.class("Integer", types.KindClass, d.object(), types.ClassFinal)
	d.constant(i, "MAX_VALUE", bt.Int, func(*vm.Call) (vm.Value, error) { return vm.Int(math.MaxInt32), nil })
	d.constant(i, "MIN_VALUE", bt.Int, func(*vm.Call) (vm.Value, error) { return vm.Int(math.MinInt32), nil })
	d.static(i, "parseInt", bt.Int, func(c *vm.Call) (vm.Value, error) {
		s := strArg(c, 0)
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return vm.Null(), c.Throw("NumberFormatException", "For input string: \""+s+"\"")
		}
		return vm.Int(int32(n)), nil
	}, param("s", bt.String))
	d.static(i, "toString", bt.String, func(c *vm.Call) (vm.Value, error) {
		return vm.Str(strconv.Itoa(int(arg(c, 0).AsInt()))), nil
	}, param("i", bt.Int))

	f := d.class("Double", types.KindClass, d.object(), types.ClassFinal)
	d.constant(f, "MAX_VALUE", bt.Double, func(*vm.Call) (vm.Value, error) { return vm.Double(math.MaxFloat64), nil })
	d.static(f, "parseDouble", bt.Double, func(c *vm.Call) (vm.Value, error) {
		s := strArg(c, 0)
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return vm.Null(), c.Throw("NumberFormatException", "For input string: \""+s+"\"")
		}
		return vm.Double(x), nil
	}, param("s", bt.String))

	ch := d.class("Character", types.KindClass, d.object(), types.ClassFinal)
	pred := func(name string, fn func(rune) bool) {
		d.static(ch, name, bt.Bool, func(c *vm.Call) (vm.Value, error) {
			return vm.Bool(fn(rune(arg(c, 0).AsInt()))), nil
		}, param("ch", bt.Char))
	}
	pred("isDigit", unicode.IsDigit)
	pred("isLetter", unicode.IsLetter)
	pred("isWhitespace", unicode.IsSpace)
	pred("isUpperCase", unicode.IsUpper)
	pred("isLowerCase", unicode.IsLower)
	conv := func(name string, fn func(rune) rune) {
		d.static(ch, name, bt.Char, func(c *vm.Call) (vm.Value, error) {
			return vm.Char(uint16(fn(rune(arg(c, 0).AsInt())))), nil // #nosec G115
		}, param("ch", bt.Char))
	}
	conv("toUpperCase", unicode.ToUpper)
	conv("toLowerCase", unicode.ToLower)
}
