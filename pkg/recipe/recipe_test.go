package recipe

import (
	"math"
	"testing"
)

func TestParseItemKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ItemKind
		wantErr bool
	}{
		{"", KindItem, false},
		{"item", KindItem, false},
		{"Fluid", KindFluid, false},
		{" fluid ", KindFluid, false},
		{"gas", KindItem, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseItemKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseItemKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseItemKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestItemIdentity(t *testing.T) {
	water := Item{Name: "water", Kind: KindFluid}
	if water == (Item{Name: "water"}) {
		t.Error("fluid and item with the same name should differ")
	}
	if got := water.String(); got != "water (fluid)" {
		t.Errorf("String() = %q, want %q", got, "water (fluid)")
	}
	if got := (Item{Name: "coal"}).String(); got != "coal" {
		t.Errorf("String() = %q, want %q", got, "coal")
	}
}

func TestPrimaryOutput(t *testing.T) {
	r := &Recipe{
		Name: "advanced-oil-processing",
		Results: []Product{
			{Item: Item{Name: "heavy-oil", Kind: KindFluid}, Amount: 25},
			{Item: Item{Name: "petroleum-gas", Kind: KindFluid}, Amount: 55},
		},
	}
	if got := r.PrimaryOutput().Item.Name; got != "heavy-oil" {
		t.Errorf("PrimaryOutput() = %q, want first result", got)
	}

	r.MainProduct = "petroleum-gas"
	if got := r.PrimaryOutput(); got.Item.Name != "petroleum-gas" || got.Amount != 55 {
		t.Errorf("PrimaryOutput() = %+v, want petroleum-gas x55", got)
	}
	if !r.Produces(Item{Name: "heavy-oil", Kind: KindFluid}) {
		t.Error("Produces(heavy-oil) = false, want true")
	}
	if r.Produces(Item{Name: "heavy-oil"}) {
		t.Error("Produces(heavy-oil item) = true, want false")
	}
}

func TestMachineCount(t *testing.T) {
	gear := &Recipe{
		Name:         "iron-gear-wheel",
		CraftingTime: 0.5,
		Results:      []Product{{Item: Item{Name: "iron-gear-wheel"}, Amount: 1}},
	}
	cable := &Recipe{
		Name:         "copper-cable",
		CraftingTime: 0.5,
		Results:      []Product{{Item: Item{Name: "copper-cable"}, Amount: 2}},
	}
	asm := &Machine{Name: "assembling-machine-2", CraftingSpeed: 0.75}

	tests := []struct {
		name    string
		recipe  *Recipe
		rate    float64
		machine *Machine
		want    float64
	}{
		{"unit speed", gear, 4, &Machine{CraftingSpeed: 1}, 2},
		{"slow machine", gear, 3, asm, 2},
		{"multiple results per craft", cable, 8, &Machine{CraftingSpeed: 1}, 2},
		{"nil machine", gear, 2, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MachineCount(tt.recipe, tt.rate, tt.machine); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MachineCount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMachineSupports(t *testing.T) {
	m := &Machine{Name: "assembling-machine-1", Categories: []string{"crafting"}}
	if !m.Supports("") {
		t.Error("Supports(\"\") should match the default category")
	}
	if m.Supports("smelting") {
		t.Error("Supports(smelting) = true, want false")
	}
}
