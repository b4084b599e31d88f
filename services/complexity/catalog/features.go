// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

// Feature is the name of a boolean signal detected in a snippet.
type Feature string

// Algorithm signatures.
const (
	FeatureMergeSort     Feature = "merge_sort"
	FeatureQuickSort     Feature = "quick_sort"
	FeatureHeapSort      Feature = "heap_sort"
	FeatureBubbleSort    Feature = "bubble_sort"
	FeatureInsertionSort Feature = "insertion_sort"
	FeatureBinarySearch  Feature = "binary_search"
	FeatureLinearSearch  Feature = "linear_search"
	FeatureBinaryTree    Feature = "binary_tree"
	FeatureBST           Feature = "bst"
	FeatureTraversal     Feature = "traversal"
	FeatureDP            Feature = "dp"
	FeatureFibonacci     Feature = "fibonacci"
)

// Structural signatures.
const (
	FeatureLoop          Feature = "loop"
	FeatureNestedLoop    Feature = "nested_loop"
	FeatureRecursion     Feature = "recursion"
	FeatureDivideConquer Feature = "divide_conquer"
	FeatureDataStructure Feature = "data_structure"
)

// allFeatures is the canonical feature order. Every dialect's catalog must
// declare exactly these names.
var allFeatures = []Feature{
	FeatureMergeSort,
	FeatureQuickSort,
	FeatureHeapSort,
	FeatureBubbleSort,
	FeatureInsertionSort,
	FeatureBinarySearch,
	FeatureLinearSearch,
	FeatureBinaryTree,
	FeatureBST,
	FeatureTraversal,
	FeatureDP,
	FeatureFibonacci,
	FeatureLoop,
	FeatureNestedLoop,
	FeatureRecursion,
	FeatureDivideConquer,
	FeatureDataStructure,
}

// AllFeatures returns a copy of the canonical feature list.
func AllFeatures() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// IsKnown reports whether f is one of the canonical features.
func (f Feature) IsKnown() bool {
	for _, known := range allFeatures {
		if f == known {
			return true
		}
	}
	return false
}
