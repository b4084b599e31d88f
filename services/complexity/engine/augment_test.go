// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/stretchr/testify/assert"
)

func TestAugment_UpgradesConstantSpace(t *testing.T) {
	fs := NewFeatureSet(catalog.FeatureLoop, catalog.FeatureDataStructure)
	v := Augment(Classify(fs), fs)

	assert.Equal(t, LabelLinear, v.Time)
	assert.Equal(t, LabelLinear, v.Space)
	assert.Equal(t, "Linear time complexity due to single loop. Additional space needed for data structures.", v.Explanation)
}

func TestAugment_LeavesNonConstantSpace(t *testing.T) {
	fs := NewFeatureSet(catalog.FeatureQuickSort, catalog.FeatureDataStructure)
	before := Classify(fs)
	after := Augment(before, fs)

	assert.Equal(t, before, after)
	assert.Equal(t, LabelLogarithmic, after.Space)
}

func TestAugment_NoDataStructure(t *testing.T) {
	fs := NewFeatureSet(catalog.FeatureLoop)
	before := Classify(fs)
	assert.Equal(t, before, Augment(before, fs))
}

func TestAugment_Monotonic(t *testing.T) {
	// One representative feature set per decision outcome.
	sets := []FeatureSet{
		NewFeatureSet(catalog.FeatureMergeSort),
		NewFeatureSet(catalog.FeatureQuickSort),
		NewFeatureSet(catalog.FeatureHeapSort),
		NewFeatureSet(catalog.FeatureBubbleSort),
		NewFeatureSet(catalog.FeatureInsertionSort),
		NewFeatureSet(catalog.FeatureBinarySearch),
		NewFeatureSet(catalog.FeatureLinearSearch),
		NewFeatureSet(catalog.FeatureBinaryTree, catalog.FeatureTraversal),
		NewFeatureSet(catalog.FeatureBinaryTree),
		NewFeatureSet(catalog.FeatureBST),
		NewFeatureSet(catalog.FeatureDP),
		NewFeatureSet(catalog.FeatureNestedLoop),
		NewFeatureSet(catalog.FeatureLoop),
		NewFeatureSet(catalog.FeatureRecursion),
		NewFeatureSet(),
	}

	for _, base := range sets {
		with := NewFeatureSet(catalog.FeatureDataStructure)
		for f := range base {
			with[f] = true
		}

		before := Classify(with)
		after := Augment(before, with)

		assert.Equal(t, before.Time, after.Time)
		assert.Equal(t, before.Category, after.Category)
		if before.Space == LabelConstant {
			assert.Equal(t, LabelLinear, after.Space, "rule for %v", base.Detected())
			assert.True(t, strings.HasSuffix(after.Explanation, dataStructureClause))
		} else {
			assert.Equal(t, before.Space, after.Space, "rule for %v", base.Detected())
			assert.Equal(t, before.Explanation, after.Explanation)
		}
	}
}

func TestAugment_DoesNotMutateInput(t *testing.T) {
	fs := NewFeatureSet(catalog.FeatureDataStructure)
	v := DefaultVerdict()
	_ = Augment(v, fs)
	assert.Equal(t, DefaultVerdict(), v)
}
