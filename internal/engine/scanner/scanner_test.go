package scanner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/scanner"
)

func refs(u *domain.DesignUnit) []string {
	out := make([]string, 0, len(u.References))
	for _, r := range u.References {
		s := fmt.Sprintf("%s %s", r.Kind, r.String())
		if r.Soft {
			s += " ~"
		}
		out = append(out, s)
	}
	return out
}

func keys(res *domain.ScanResult) []string {
	out := make([]string, 0, len(res.Units))
	for _, u := range res.Units {
		out = append(out, fmt.Sprintf("%s %s", u.Kind, u.Key))
	}
	return out
}

func scanVHDL(t *testing.T, src string) *domain.ScanResult {
	t.Helper()
	return scanner.New().ScanSource("test.vhd", domain.DialectVHDL, []byte(src))
}

func scanSV(t *testing.T, src string) *domain.ScanResult {
	t.Helper()
	return scanner.New().ScanSource("test.sv", domain.DialectSystemVerilog, []byte(src))
}

func TestScanVHDL_EntityAndArchitecture(t *testing.T) {
	res := scanVHDL(t, `
library ieee;
use ieee.std_logic_1164.all;
library util;
use util.math_pkg.all;

entity top is
  port (clk : in std_logic; q : out std_logic);
end entity top;

architecture rtl of top is
  component counter is
    port (clk : in std_logic);
  end component;
  signal s : std_logic_vector(3 downto 0);
begin
  u0 : counter port map (clk => clk);
  u1 : entity work.adder(fast) port map (a => s);
  q <= '1' when s'length = 4 else '0';
  assert false report "entity fake is -- not a comment" severity note;
end architecture rtl;
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"entity top", "architecture top(rtl)"}, keys(res))

	top := res.Units[0]
	assert.True(t, top.HasPorts)
	assert.False(t, top.IsTestbench())
	assert.Equal(t, []string{"library util", "use util.math_pkg"}, refs(top))
	assert.Equal(t, 7, top.Span.Line)

	rtl := res.Units[1]
	assert.Equal(t, []string{
		"component counter",
		"instance counter",
		"instance work.adder(fast)",
	}, refs(rtl))
}

func TestScanVHDL_GenerateStatements(t *testing.T) {
	res := scanVHDL(t, `
entity top is
  generic (WIDTH : natural := 4);
end entity top;

architecture rtl of top is
  component counter is
    port (clk : in bit);
  end component;
  signal clk : bit;
begin
  g_width : if WIDTH > 1 generate
    u_wide : entity work.wide port map (clk => clk);
  else generate
    u_narrow : entity work.narrow port map (clk => clk);
  end generate g_width;

  g_lanes : for i in 0 to WIDTH - 1 generate
    u_cnt : counter port map (clk => clk);
  end generate g_lanes;
end architecture rtl;
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"entity top", "architecture top(rtl)"}, keys(res))
	assert.Equal(t, []string{
		"component counter",
		"instance work.wide",
		"instance work.narrow",
		"instance counter",
	}, refs(res.Units[1]))
}

func TestScanVHDL_CaseInsensitiveNames(t *testing.T) {
	res := scanVHDL(t, "ENTITY Top IS END ENTITY TOP;\nArchitecture RTL of TOP is begin end;")
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"entity top", "architecture top(rtl)"}, keys(res))
}

func TestScanVHDL_PackageOverloads(t *testing.T) {
	res := scanVHDL(t, `
package conv is
  function to_str(v : integer) return string;
  function to_str(v : boolean) return string;
  procedure dump(msg : string);
end package conv;

package body conv is
  function to_str(v : integer) return string is
  begin
    return integer'image(v);
  end function;
  function to_str(v : boolean) return string is
  begin
    return boolean'image(v);
  end function;
  procedure dump(msg : string) is
  begin
    report msg;
  end procedure;
end package body conv;
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"package conv", "package-body conv(body)"}, keys(res))

	syms := res.Units[0].Symbols
	require.Len(t, syms, 3)
	assert.Equal(t, "to_str", syms[0].Name.String())
	assert.Equal(t, "(v: integer) return string", syms[0].Signature)
	assert.Equal(t, "to_str", syms[1].Name.String())
	assert.Equal(t, "(v: boolean) return string", syms[1].Signature)
	assert.Equal(t, "procedure", syms[2].Kind)
	assert.Equal(t, "(msg: string)", syms[2].Signature)
	assert.Empty(t, res.Units[1].Symbols)
}

func TestScanVHDL_Configuration(t *testing.T) {
	res := scanVHDL(t, `
configuration cfg of top is
  for rtl
    for u0 : counter use entity work.counter(slow);
    end for;
  end for;
end configuration cfg;
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"configuration cfg"}, keys(res))
	assert.Equal(t, []string{
		"binding top(rtl)",
		"binding work.counter(slow)",
	}, refs(res.Units[0]))
}

func TestScanVHDL_ConfigurationSpecification(t *testing.T) {
	res := scanVHDL(t, `
architecture rtl of top is
  component counter port (clk : in bit); end component;
  for all : counter use entity work.fast_counter(rtl);
begin
  u0 : counter port map (clk => clk);
end rtl;
`)
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{
		"component counter ~",
		"binding work.fast_counter(rtl)",
		"instance counter ~",
	}, refs(res.Units[0]))
}

func TestScanVHDL_SelectedNames(t *testing.T) {
	res := scanVHDL(t, `
library util;
entity e is
end entity;
architecture a of e is
  constant w : integer := util.widths.bus_width;
  signal r : rec_t;
begin
  r.valid <= consts.enabled;
end architecture;
`)
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{
		"symbol util.widths",
		"symbol r ~",
		"symbol consts ~",
	}, refs(res.Units[1]))
}

func TestScanVHDL_PackageInstantiation(t *testing.T) {
	res := scanVHDL(t, `
library util;
package fifo_pkg is new util.generic_fifo generic map (depth => 16);
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"package fifo_pkg"}, keys(res))
	assert.Equal(t, []string{"library util", "use util.generic_fifo"}, refs(res.Units[0]))
}

func TestScanVHDL_Context(t *testing.T) {
	res := scanVHDL(t, `
context board_ctx is
  library util;
  use util.types.all;
end context board_ctx;

context work.board_ctx;
entity e is end;
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"context board_ctx", "entity e"}, keys(res))
	assert.Equal(t, []string{"library util", "use util.types"}, refs(res.Units[0]))
	assert.Equal(t, []string{"context work.board_ctx"}, refs(res.Units[1]))
	assert.True(t, res.Units[1].IsTestbench())
}

func TestScanVHDL_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unterminated entity",
			src:  "entity broken is\n  port (a : in bit);\n",
			want: "test.vhd:1:1: unterminated entity 'broken'",
		},
		{
			name: "end label mismatch",
			src:  "entity a is\nend entity b;\n",
			want: "test.vhd:2:12: end label 'b' does not match entity 'a'",
		},
		{
			name: "unterminated string",
			src:  "entity a is\nend;\n-- ok\narchitecture r of a is\nbegin\n  assert false report \"oops;\nend;\n",
			want: "test.vhd:6:23: unterminated string literal",
		},
		{
			name: "unterminated comment",
			src:  "/* header\nentity a is end;\n",
			want: "test.vhd:1:1: unterminated block comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scanVHDL(t, tt.src)
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, tt.want, res.Diagnostics[0].Error())
			assert.Empty(t, res.Units, "a failed file contributes no units")
			assert.True(t, res.Failed())
		})
	}
}

func TestScanVerilog_Instances(t *testing.T) {
	src := "`timescale 1ns/1ps\n`define WIDTH 8\n" + `
module top (input clk, output [` + "`WIDTH" + `-1:0] q);
  wire w;
  and g1 (w, clk, clk);
  adder #(.W(8)) u_add (.a(w), .y(q));
  counter u_cnt [3:0] (.clk(clk));
  bus_if bus ();
  assign q = w;
endmodule : top
`
	res := scanner.New().ScanSource("top.v", domain.DialectVerilog, []byte(src))
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"module top"}, keys(res))

	top := res.Units[0]
	assert.True(t, top.HasPorts)
	assert.Equal(t, domain.DialectVerilog, top.Dialect)
	assert.Equal(t, []string{
		"instance adder",
		"instance counter",
		"instance bus_if",
	}, refs(top))
}

func TestScanVerilog_GenerateBlocks(t *testing.T) {
	src := `
module top (input clk);
  localparam W = 2;
  genvar i;
  generate
    if (W > 1) begin : g_wide
      wide u_wide (.clk(clk));
    end else begin : g_narrow
      narrow u_narrow (.clk(clk));
    end
    for (i = 0; i < W; i = i + 1) begin : g_lane
      lane u_lane (.clk(clk));
    end
  endgenerate
endmodule
`
	res := scanner.New().ScanSource("top.v", domain.DialectVerilog, []byte(src))
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"module top"}, keys(res))
	assert.Equal(t, []string{
		"instance wide",
		"instance narrow",
		"instance lane",
	}, refs(res.Units[0]))
}

func TestScanVerilog_CaseSensitiveNames(t *testing.T) {
	res := scanner.New().ScanSource("m.v", domain.DialectVerilog, []byte("module Mixed; endmodule\nmodule mixed; endmodule\n"))
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"module Mixed", "module mixed"}, keys(res))
}

func TestScanSystemVerilog_Constructs(t *testing.T) {
	res := scanSV(t, `
package bus_pkg;
  typedef logic [7:0] byte_t;
  function automatic byte_t inc(byte_t v);
    return v + 1;
  endfunction
endpackage

interface bus_if (input logic clk);
  logic valid;
  modport slave (input valid);
endinterface

interface class printable;
  pure virtual function void print();
endclass

class packet extends base_pkg::item implements printable;
endclass

module dut import bus_pkg::*; (bus_if.slave bus, input logic rst);
  bus_pkg::byte_t data;
endmodule

program test;
  initial $display("module not_a_unit;");
endprogram
`)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{
		"package bus_pkg",
		"interface bus_if",
		"interface printable",
		"class packet",
		"module dut",
		"program test",
	}, keys(res))

	assert.Empty(t, refs(res.Units[0]))
	assert.True(t, res.Units[1].HasPorts)
	assert.Equal(t, []string{
		"symbol base_pkg ~",
		"extends item ~",
		"extends printable ~",
	}, refs(res.Units[3]))
	assert.Equal(t, []string{
		"extends bus_if ~",
		"use bus_pkg",
		"symbol bus_pkg ~",
	}, refs(res.Units[4]))
	assert.True(t, res.Units[5].IsTestbench())
}

func TestScanSystemVerilog_CompilationUnitImports(t *testing.T) {
	res := scanSV(t, "import common_pkg::*;\nmodule a; endmodule\nmodule b; endmodule\n")
	require.Empty(t, res.Diagnostics)
	for _, u := range res.Units {
		assert.Equal(t, []string{"use common_pkg"}, refs(u), u.Key.String())
	}
}

func TestScanVerilog_Directives(t *testing.T) {
	src := "`define MK module fake; endmodule\n" +
		"`ifdef FAST\nmodule impl_fast; endmodule\n`else\nmodule impl_slow; endmodule\n`endif\n"
	res := scanner.New().ScanSource("d.v", domain.DialectVerilog, []byte(src))
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"module impl_fast", "module impl_slow"}, keys(res))
}

func TestScanVerilog_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unterminated module",
			src:  "module m (input a);\n  wire x;\n",
			want: "m.v:1:1: unterminated module 'm'",
		},
		{
			name: "unterminated comment",
			src:  "/* never closed\nmodule m; endmodule\n",
			want: "m.v:1:1: unterminated block comment",
		},
		{
			name: "missing name",
			src:  "module (input a); endmodule\n",
			want: "m.v:1:1: expected module name",
		},
		{
			name: "end label mismatch",
			src:  "module m; endmodule : n\n",
			want: "m.v:1:23: end label 'n' does not match module 'm'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scanner.New().ScanSource("m.v", domain.DialectVerilog, []byte(tt.src))
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, tt.want, res.Diagnostics[0].Error())
			assert.Empty(t, res.Units)
		})
	}
}

func TestScanner_IgnoredLibraries(t *testing.T) {
	src := "library unisim;\nuse unisim.vcomponents.all;\nentity e is end;\n"

	res := scanner.New().ScanSource("e.vhd", domain.DialectVHDL, []byte(src))
	assert.Equal(t, []string{"library unisim", "use unisim.vcomponents"}, refs(res.Units[0]))

	res = scanner.New(scanner.WithIgnoredLibraries("ieee", "std", "unisim")).
		ScanSource("e.vhd", domain.DialectVHDL, []byte(src))
	assert.Empty(t, refs(res.Units[0]))
}

func TestScanner_CachedResultsAreCopies(t *testing.T) {
	s := scanner.New()
	src := []byte("module m; endmodule\n")

	first := s.ScanSource("m.v", domain.DialectVerilog, src)
	first.Units[0].Seq = 42

	second := s.ScanSource("m.v", domain.DialectVerilog, src)
	assert.Equal(t, 0, second.Units[0].Seq)
}

func TestScanner_ScanAllPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var files []domain.SourceFile
	for i := range 20 {
		path := filepath.Join(dir, fmt.Sprintf("m%02d.v", i))
		require.NoError(t, os.WriteFile(path, fmt.Appendf(nil, "module m%02d; endmodule\n", i), 0o644))
		files = append(files, domain.SourceFile{Path: path, Dialect: domain.DialectVerilog})
	}

	results, err := scanner.New(scanner.WithJobs(4)).ScanAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, res := range results {
		assert.Equal(t, files[i].Path, res.File)
		require.Len(t, res.Units, 1)
		assert.Equal(t, fmt.Sprintf("m%02d", i), res.Units[0].Key.Name.String())
	}
}

func TestScanner_ScanAllMissingFile(t *testing.T) {
	_, err := scanner.New().ScanAll(context.Background(), []domain.SourceFile{
		{Path: filepath.Join(t.TempDir(), "absent.v"), Dialect: domain.DialectVerilog},
	})
	require.Error(t, err)
}

func TestAggregate(t *testing.T) {
	s := scanner.New()
	results := []*domain.ScanResult{
		s.ScanSource("a.v", domain.DialectVerilog, []byte("module a; endmodule\nmodule b; endmodule\n")),
		s.ScanSource("bad.v", domain.DialectVerilog, []byte("module c;\n")),
		s.ScanSource("d.vhd", domain.DialectVHDL, []byte("entity d is end;\n")),
	}

	lib := domain.NewLibrary(domain.NewIdentifier("app"), domain.IPSpec{Name: "app"})
	next, diags := scanner.Aggregate(lib, results, 0)

	assert.Equal(t, 3, next)
	require.Len(t, diags, 1)
	assert.Equal(t, "bad.v", diags[0].File)

	var names []string
	for _, u := range lib.Units() {
		names = append(names, fmt.Sprintf("%s@%d", u.Key, u.Seq))
	}
	assert.Equal(t, []string{"app.a@0", "app.b@1", "app.d@2"}, names)
}
