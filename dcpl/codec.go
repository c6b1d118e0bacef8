// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dcpl

import (
	"fmt"

	"github.com/HDFGroup/vol-rest-go/jsontree"
)

// Emit produces the "creationProperties" object for pl. allocTime is
// always present so that every subsequent field can be appended
// unconditionally without special-casing a trailing comma.
func Emit(pl PropertyList) (map[string]interface{}, error) {
	out := map[string]interface{}{
		"allocTime": string(pl.AllocTime),
	}

	if pl.AttributeCreationOrder != nil {
		out["attributeCreationOrder"] = string(*pl.AttributeCreationOrder)
	}

	if pl.AttributePhaseChange != nil {
		def := DefaultAttributePhaseChange()
		if *pl.AttributePhaseChange != def {
			out["attributePhaseChange"] = map[string]interface{}{
				"maxCompact": pl.AttributePhaseChange.MaxCompact,
				"minDense":   pl.AttributePhaseChange.MinDense,
			}
		}
	}

	if pl.FillTime != "" {
		out["fillTime"] = string(pl.FillTime)
	}
	if !pl.FillDefined {
		out["fillValue"] = nil
	}

	if len(pl.Filters) > 0 {
		filters := make([]interface{}, len(pl.Filters))
		for i, f := range pl.Filters {
			emitted, err := emitFilter(f)
			if err != nil {
				return nil, err
			}
			filters[i] = emitted
		}
		out["filters"] = filters
	}

	if pl.Layout != nil {
		emitted, err := emitLayout(*pl.Layout)
		if err != nil {
			return nil, err
		}
		out["layout"] = emitted
	}

	if pl.TrackTimes {
		out["trackTimes"] = "true"
	} else {
		out["trackTimes"] = "false"
	}

	return out, nil
}

func emitFilter(f Filter) (map[string]interface{}, error) {
	if err := ValidateFilter(f); err != nil {
		return nil, err
	}
	out := map[string]interface{}{"class": string(f.Class)}
	switch f.Class {
	case FilterDeflate:
		out["level"] = f.Level
	case FilterSZIP:
		out["pixelsPerBlock"] = f.PixelsPerBlock
		out["coding"] = string(f.Coding)
	case FilterScaleoffset:
		out["scaleType"] = f.ScaleType
		out["scaleFactor"] = f.ScaleFactor
	case FilterUser:
		out["filterId"] = f.FilterID
		params := make([]interface{}, len(f.Parameters))
		for i, p := range f.Parameters {
			params[i] = p
		}
		out["parameters"] = params
	case FilterShuffle, FilterFletcher32, FilterNBit, FilterLZF:
		// No filter-specific parameters.
	}
	return out, nil
}

func emitLayout(l Layout) (map[string]interface{}, error) {
	if err := ValidateLayout(l); err != nil {
		return nil, err
	}
	out := map[string]interface{}{"class": string(l.Class)}
	if l.Class == LayoutChunked {
		dims := make([]interface{}, len(l.Dims))
		for i, d := range l.Dims {
			dims[i] = d
		}
		out["dims"] = dims
	}
	return out, nil
}

// Parse ingests a "creationProperties" subtree (as produced by Emit)
// and populates a PropertyList. Absent optional keys leave the
// corresponding field at its zero value.
func Parse(node jsontree.Node) (PropertyList, error) {
	pl := PropertyList{}

	if allocNode, err := node.Key("allocTime"); err == nil {
		s, err := allocNode.String()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"allocTime\" is not a string")
		}
		pl.AllocTime = AllocTime(s)
	}

	if node.Has("attributeCreationOrder") {
		orderNode, _ := node.Key("attributeCreationOrder")
		s, err := orderNode.String()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"attributeCreationOrder\" is not a string")
		}
		order := AttributeCreationOrder(s)
		pl.AttributeCreationOrder = &order
	}

	if node.Has("attributePhaseChange") {
		phaseNode, _ := node.Key("attributePhaseChange")
		maxNode, err := phaseNode.Key("maxCompact")
		if err != nil {
			return pl, fmt.Errorf("dcpl: attributePhaseChange missing \"maxCompact\"")
		}
		minNode, err := phaseNode.Key("minDense")
		if err != nil {
			return pl, fmt.Errorf("dcpl: attributePhaseChange missing \"minDense\"")
		}
		maxV, err := maxNode.Int()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"maxCompact\" is not a number")
		}
		minV, err := minNode.Int()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"minDense\" is not a number")
		}
		change := AttributePhaseChange{MaxCompact: int(maxV), MinDense: int(minV)}
		pl.AttributePhaseChange = &change
	}

	if fillTimeNode, err := node.Key("fillTime"); err == nil {
		s, err := fillTimeNode.String()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"fillTime\" is not a string")
		}
		pl.FillTime = FillTime(s)
	}

	if node.Has("fillValue") {
		fillNode, _ := node.Key("fillValue")
		pl.FillDefined = !fillNode.IsNil()
	}

	if node.Has("filters") {
		filtersNode, _ := node.Key("filters")
		filterNodes, err := filtersNode.Array()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"filters\" is not an array")
		}
		filters := make([]Filter, len(filterNodes))
		for i, fn := range filterNodes {
			f, err := parseFilter(fn)
			if err != nil {
				return pl, err
			}
			filters[i] = f
		}
		pl.Filters = filters
	}

	if node.Has("layout") {
		layoutNode, _ := node.Key("layout")
		layout, err := parseLayout(layoutNode)
		if err != nil {
			return pl, err
		}
		pl.Layout = &layout
	}

	if trackNode, err := node.Key("trackTimes"); err == nil {
		s, err := trackNode.String()
		if err != nil {
			return pl, fmt.Errorf("dcpl: \"trackTimes\" is not a string")
		}
		pl.TrackTimes = s == "true"
	}

	return pl, nil
}

func parseFilter(node jsontree.Node) (Filter, error) {
	classNode, err := node.Key("class")
	if err != nil {
		return Filter{}, fmt.Errorf("dcpl: filter missing \"class\"")
	}
	classStr, err := classNode.String()
	if err != nil {
		return Filter{}, fmt.Errorf("dcpl: filter \"class\" is not a string")
	}
	f := Filter{Class: FilterClass(classStr)}

	switch f.Class {
	case FilterDeflate:
		if levelNode, err := node.Key("level"); err == nil {
			v, err := levelNode.Int()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: deflate \"level\" is not a number")
			}
			f.Level = int(v)
		}
	case FilterSZIP:
		if ppbNode, err := node.Key("pixelsPerBlock"); err == nil {
			v, err := ppbNode.Int()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: SZIP \"pixelsPerBlock\" is not a number")
			}
			f.PixelsPerBlock = int(v)
		}
		if codingNode, err := node.Key("coding"); err == nil {
			s, err := codingNode.String()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: SZIP \"coding\" is not a string")
			}
			f.Coding = SZIPMask(s)
		}
	case FilterScaleoffset:
		if typeNode, err := node.Key("scaleType"); err == nil {
			s, err := typeNode.String()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: SCALEOFFSET \"scaleType\" is not a string")
			}
			f.ScaleType = s
		}
		if factorNode, err := node.Key("scaleFactor"); err == nil {
			v, err := factorNode.Int()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: SCALEOFFSET \"scaleFactor\" is not a number")
			}
			f.ScaleFactor = int(v)
		}
	case FilterUser:
		if idNode, err := node.Key("filterId"); err == nil {
			v, err := idNode.Int()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: USER \"filterId\" is not a number")
			}
			f.FilterID = int(v)
		}
		if paramsNode, err := node.Key("parameters"); err == nil {
			paramNodes, err := paramsNode.Array()
			if err != nil {
				return Filter{}, fmt.Errorf("dcpl: USER \"parameters\" is not an array")
			}
			params := make([]int, len(paramNodes))
			for i, p := range paramNodes {
				v, err := p.Int()
				if err != nil {
					return Filter{}, fmt.Errorf("dcpl: USER parameter %d is not a number", i)
				}
				params[i] = int(v)
			}
			f.Parameters = params
		}
	}

	if err := ValidateFilter(f); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseLayout(node jsontree.Node) (Layout, error) {
	classNode, err := node.Key("class")
	if err != nil {
		return Layout{}, fmt.Errorf("dcpl: layout missing \"class\"")
	}
	classStr, err := classNode.String()
	if err != nil {
		return Layout{}, fmt.Errorf("dcpl: layout \"class\" is not a string")
	}
	l := Layout{Class: LayoutClass(classStr)}
	if l.Class == LayoutChunked {
		dimsNode, err := node.Key("dims")
		if err != nil {
			return Layout{}, fmt.Errorf("dcpl: chunked layout missing \"dims\"")
		}
		dimNodes, err := dimsNode.Array()
		if err != nil {
			return Layout{}, fmt.Errorf("dcpl: layout \"dims\" is not an array")
		}
		dims := make([]uint64, len(dimNodes))
		for i, d := range dimNodes {
			v, err := d.Int()
			if err != nil {
				return Layout{}, fmt.Errorf("dcpl: layout dimension is not a number")
			}
			dims[i] = uint64(v)
		}
		l.Dims = dims
	}
	if err := ValidateLayout(l); err != nil {
		return Layout{}, err
	}
	return l, nil
}
