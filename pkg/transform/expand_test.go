package transform

import (
	"reflect"
	"testing"

	"github.com/yurifrl/cardcsv/pkg/models"
)

func TestExpand(t *testing.T) {
	record := models.Record{"colors": []interface{}{"Blue"}}
	got := Expand(record, "colors", []string{"White", "Blue", "Black"})
	if want := []string{"0", "1", "0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandMissingField(t *testing.T) {
	got := Expand(models.Record{}, "colors", []string{"White", "Blue"})
	if want := []string{"0", "0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}
