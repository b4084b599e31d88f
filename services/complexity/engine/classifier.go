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
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
)

// Complexity labels. Rendered verbatim to callers.
const (
	LabelConstant     = "O(1)"
	LabelLogarithmic  = "O(log n)"
	LabelLinear       = "O(n)"
	LabelLinearithmic = "O(n log n)"
	LabelQuadratic    = "O(n²)"
	LabelExponential  = "O(2ⁿ)"

	// LabelHeight is O(h) where h is the (uncomputed) tree height.
	LabelHeight = "O(h)"
)

// Algorithm categories.
const (
	CategoryBasicOperation     = "Basic Operation"
	CategoryMergeSort          = "Merge Sort"
	CategoryQuickSort          = "Quick Sort"
	CategoryHeapSort           = "Heap Sort"
	CategoryBubbleSort         = "Bubble Sort"
	CategoryInsertionSort      = "Insertion Sort"
	CategoryBinarySearch       = "Binary Search"
	CategoryLinearSearch       = "Linear Search"
	CategoryTreeTraversal      = "Tree Traversal"
	CategoryBinarySearchTree   = "Binary Search Tree"
	CategoryBinaryTree         = "Binary Tree"
	CategoryDynamicProgramming = "Dynamic Programming"
)

// Verdict is the classification result for one snippet.
type Verdict struct {
	Time        string `json:"time" msgpack:"time"`
	Space       string `json:"space" msgpack:"space"`
	Explanation string `json:"explanation" msgpack:"explanation"`
	Category    string `json:"category" msgpack:"category"`
}

// DefaultVerdict is returned when no feature matches.
func DefaultVerdict() Verdict {
	return Verdict{
		Time:        LabelConstant,
		Space:       LabelConstant,
		Explanation: "Constant time and space complexity.",
		Category:    CategoryBasicOperation,
	}
}

// =============================================================================
// Decision Table
// =============================================================================

// DecisionRule is one entry of the classifier's priority list.
type DecisionRule struct {
	// Name identifies the rule in logs, metrics and API responses.
	Name string

	// Matches reports whether the rule applies to a feature set.
	Matches func(FeatureSet) bool

	// Decide builds the verdict. Only called when Matches is true.
	Decide func(FeatureSet) Verdict
}

// Rule names, in priority order.
const (
	RuleMergeSort    = "merge_sort"
	RuleQuickSort    = "quick_sort"
	RuleHeapSort     = "heap_sort"
	RuleSimpleSort   = "simple_sort"
	RuleBinarySearch = "binary_search"
	RuleLinearSearch = "linear_search"
	RuleTree         = "tree"
	RuleDynamicProg  = "dynamic_programming"
	RuleNestedLoop   = "nested_loop"
	RuleSingleLoop   = "single_loop"
	RuleRecursion    = "recursion"
	RuleDefault      = "default"
)

// decisionTable is evaluated top to bottom; the first match wins. The
// algorithm-signature rules come before the structural ones. The final
// rule always matches.
var decisionTable = []DecisionRule{
	{
		Name: RuleMergeSort,
		Matches: func(fs FeatureSet) bool {
			return fs.Has(catalog.FeatureMergeSort) ||
				(fs.Has(catalog.FeatureRecursion) && fs.Has(catalog.FeatureDivideConquer))
		},
		Decide: fixed(Verdict{
			Time:        LabelLinearithmic,
			Space:       LabelLinear,
			Explanation: "Divide-and-conquer sorting algorithm with logarithmic recursion tree and linear space for merging.",
			Category:    CategoryMergeSort,
		}),
	},
	{
		Name:    RuleQuickSort,
		Matches: has(catalog.FeatureQuickSort),
		Decide: fixed(Verdict{
			Time:        LabelLinearithmic,
			Space:       LabelLogarithmic,
			Explanation: "Divide-and-conquer sorting algorithm with average case O(n log n), worst case O(n²).",
			Category:    CategoryQuickSort,
		}),
	},
	{
		Name:    RuleHeapSort,
		Matches: has(catalog.FeatureHeapSort),
		Decide: fixed(Verdict{
			Time:        LabelLinearithmic,
			Space:       LabelConstant,
			Explanation: "Comparison-based sorting using a binary heap data structure.",
			Category:    CategoryHeapSort,
		}),
	},
	{
		Name:    RuleSimpleSort,
		Matches: hasAny(catalog.FeatureBubbleSort, catalog.FeatureInsertionSort),
		Decide: func(fs FeatureSet) Verdict {
			category := CategoryInsertionSort
			if fs.Has(catalog.FeatureBubbleSort) {
				category = CategoryBubbleSort
			}
			return Verdict{
				Time:        LabelQuadratic,
				Space:       LabelConstant,
				Explanation: "Simple comparison-based sorting with quadratic time complexity.",
				Category:    category,
			}
		},
	},
	{
		Name:    RuleBinarySearch,
		Matches: has(catalog.FeatureBinarySearch),
		Decide: fixed(Verdict{
			Time:        LabelLogarithmic,
			Space:       LabelConstant,
			Explanation: "Binary search algorithm with logarithmic time complexity.",
			Category:    CategoryBinarySearch,
		}),
	},
	{
		Name:    RuleLinearSearch,
		Matches: has(catalog.FeatureLinearSearch),
		Decide: fixed(Verdict{
			Time:        LabelLinear,
			Space:       LabelConstant,
			Explanation: "Linear search with sequential access pattern.",
			Category:    CategoryLinearSearch,
		}),
	},
	{
		Name:    RuleTree,
		Matches: hasAny(catalog.FeatureBinaryTree, catalog.FeatureBST),
		Decide: func(fs FeatureSet) Verdict {
			if fs.Has(catalog.FeatureTraversal) {
				return Verdict{
					Time:        LabelLinear,
					Space:       LabelHeight,
					Explanation: "Tree traversal visiting all nodes, where h is the height of the tree.",
					Category:    CategoryTreeTraversal,
				}
			}
			category := CategoryBinaryTree
			if fs.Has(catalog.FeatureBST) {
				category = CategoryBinarySearchTree
			}
			return Verdict{
				Time:        LabelHeight,
				Space:       LabelConstant,
				Explanation: "Binary tree/BST operation, where h is the height of the tree.",
				Category:    category,
			}
		},
	},
	{
		Name:    RuleDynamicProg,
		Matches: hasAny(catalog.FeatureDP, catalog.FeatureFibonacci),
		Decide: fixed(Verdict{
			Time:        LabelLinear,
			Space:       LabelLinear,
			Explanation: "Dynamic programming solution with memoization/tabulation.",
			Category:    CategoryDynamicProgramming,
		}),
	},
	{
		Name:    RuleNestedLoop,
		Matches: has(catalog.FeatureNestedLoop),
		Decide: fixed(Verdict{
			Time:        LabelQuadratic,
			Space:       LabelConstant,
			Explanation: "Quadratic time complexity due to nested loops.",
			Category:    CategoryBasicOperation,
		}),
	},
	{
		Name:    RuleSingleLoop,
		Matches: has(catalog.FeatureLoop),
		Decide: fixed(Verdict{
			Time:        LabelLinear,
			Space:       LabelConstant,
			Explanation: "Linear time complexity due to single loop.",
			Category:    CategoryBasicOperation,
		}),
	},
	{
		Name: RuleRecursion,
		Matches: func(fs FeatureSet) bool {
			return fs.Has(catalog.FeatureRecursion) && !fs.Has(catalog.FeatureDivideConquer)
		},
		Decide: fixed(Verdict{
			Time:        LabelExponential,
			Space:       LabelLinear,
			Explanation: "Exponential time complexity with recursive calls.",
			Category:    CategoryBasicOperation,
		}),
	},
	{
		Name:    RuleDefault,
		Matches: func(FeatureSet) bool { return true },
		Decide:  func(FeatureSet) Verdict { return DefaultVerdict() },
	},
}

func has(f catalog.Feature) func(FeatureSet) bool {
	return func(fs FeatureSet) bool { return fs.Has(f) }
}

func hasAny(features ...catalog.Feature) func(FeatureSet) bool {
	return func(fs FeatureSet) bool {
		for _, f := range features {
			if fs.Has(f) {
				return true
			}
		}
		return false
	}
}

func fixed(v Verdict) func(FeatureSet) Verdict {
	return func(FeatureSet) Verdict { return v }
}

// DecisionRules returns a copy of the classifier's priority list.
func DecisionRules() []DecisionRule {
	out := make([]DecisionRule, len(decisionTable))
	copy(out, decisionTable)
	return out
}

// Classify returns the verdict of the first decision rule that matches fs.
//
// The data-structure space adjustment is not applied here; see Augment.
func Classify(fs FeatureSet) Verdict {
	v, _ := ClassifyWithRule(fs)
	return v
}

// ClassifyWithRule is Classify that also reports which rule fired.
//
// Thread Safety: Safe for concurrent use. The table is never mutated.
func ClassifyWithRule(fs FeatureSet) (Verdict, string) {
	for _, rule := range decisionTable {
		if rule.Matches(fs) {
			return rule.Decide(fs), rule.Name
		}
	}
	// Unreachable: the default rule always matches.
	return DefaultVerdict(), RuleDefault
}
