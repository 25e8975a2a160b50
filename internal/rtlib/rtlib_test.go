package rtlib_test

import (
	"strings"
	"testing"

	"jstep/internal/testkit"
	"jstep/internal/vm"
)

func TestLibraryPrograms(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"list", `ArrayList<Integer> xs = new ArrayList<Integer>();
xs.add(1);
xs.add(3);
println(xs.get(0) + xs.get(1));
println(xs.size() + " " + xs.contains(3) + " " + xs.indexOf(7));
println(xs);
`, "4\n2 true -1\n[1, 3]\n"},
		{"list for-each", `ArrayList<String> names = new ArrayList<String>();
names.add("ann");
names.add(0, "bob");
String all = "";
for (String n : names) {
    all = all + n.toUpperCase();
}
println(all);
`, "BOBANN\n"},
		{"strings", `String s = "  Hello, World  ";
String t = s.trim();
println(t.length());
println(t.substring(7));
println(t.indexOf("World") + " " + t.charAt(0));
println(t.toLowerCase().startsWith("hello"));
println("a,b,c".split(",").length);
`, "12\nWorld\n7 H\ntrue\n3\n"},
		{"parse", `println(Integer.parseInt("41") + 1);
println(Double.parseDouble("1.5") * 2);
try {
    Integer.parseInt("x1");
} catch (NumberFormatException e) {
    println(e.getMessage());
}
`, "42\n3.0\nFor input string: \"x1\"\n"},
		{"math", `println(Math.max(3, 9));
println(Math.abs(-4));
println(Math.sqrt(16));
`, "9\n4\n4.0\n"},
		{"enum", `enum Color { RED, GREEN }
Color c = Color.GREEN;
println(c);
println(c.ordinal() + " " + Color.values().length);
`, "GREEN\n1 2\n"},
		{"exception toString", `class Oops extends RuntimeException {
    Oops(String m) { super(m); }
}
try {
    throw new Oops("bad");
} catch (RuntimeException e) {
    println(e);
}
`, "Oops: bad\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if out := testkit.Run(t, tc.src); out != tc.want {
				t.Fatalf("got %q, want %q", out, tc.want)
			}
		})
	}
}

func TestListIndexOutOfBounds(t *testing.T) {
	res, _ := testkit.MustCompile(t, `ArrayList<String> xs = new ArrayList<String>();
xs.add("a");
println(xs.get(2));
`)
	var got []*vm.Uncaught
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnUncaught: func(u *vm.Uncaught) { got = append(got, u) },
	}})
	testkit.RunToEnd(t, p, 10000)
	if len(got) != 1 || got[0].Class != "IndexOutOfBoundsException" {
		t.Fatalf("got %v, want one IndexOutOfBoundsException", got)
	}
	if want := "Index 2 out of bounds for length 1"; got[0].Message != want {
		t.Fatalf("got %q, want %q", got[0].Message, want)
	}
}

func TestPrintStackTrace(t *testing.T) {
	out := testkit.Run(t, `class Deep {
    static void fail() {
        throw new IllegalStateException("broken");
    }
}
try {
    Deep.fail();
} catch (IllegalStateException e) {
    e.printStackTrace();
}
println("still running");
`)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("got %q, want a trace and a trailing line", out)
	}
	if lines[0] != "IllegalStateException: broken" {
		t.Fatalf("got first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "\tat ") || !strings.Contains(lines[1], testkit.Main+":3:") {
		t.Fatalf("got frame %q, want the throw site on line 3", lines[1])
	}
	if lines[len(lines)-1] != "still running" {
		t.Fatalf("got last line %q", lines[len(lines)-1])
	}
}

func TestThreadStartTwice(t *testing.T) {
	out := testkit.Run(t, `class Job implements Runnable {
    public void run() { println("job"); }
}
Thread th = new Thread(new Job());
th.start();
th.join();
try {
    th.start();
} catch (IllegalStateException e) {
    println("again");
}
println(th.isAlive());
`)
	if want := "job\nagain\nfalse\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
