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
	"testing"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/stretchr/testify/assert"
)

func TestClassify_DecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		features FeatureSet
		rule     string
		time     string
		space    string
		category string
	}{
		{"merge sort name", NewFeatureSet(catalog.FeatureMergeSort), RuleMergeSort, LabelLinearithmic, LabelLinear, CategoryMergeSort},
		{"recursive divide and conquer", NewFeatureSet(catalog.FeatureRecursion, catalog.FeatureDivideConquer), RuleMergeSort, LabelLinearithmic, LabelLinear, CategoryMergeSort},
		{"quick sort", NewFeatureSet(catalog.FeatureQuickSort), RuleQuickSort, LabelLinearithmic, LabelLogarithmic, CategoryQuickSort},
		{"heap sort", NewFeatureSet(catalog.FeatureHeapSort), RuleHeapSort, LabelLinearithmic, LabelConstant, CategoryHeapSort},
		{"bubble sort", NewFeatureSet(catalog.FeatureBubbleSort), RuleSimpleSort, LabelQuadratic, LabelConstant, CategoryBubbleSort},
		{"insertion sort", NewFeatureSet(catalog.FeatureInsertionSort), RuleSimpleSort, LabelQuadratic, LabelConstant, CategoryInsertionSort},
		{"bubble wins over insertion", NewFeatureSet(catalog.FeatureBubbleSort, catalog.FeatureInsertionSort), RuleSimpleSort, LabelQuadratic, LabelConstant, CategoryBubbleSort},
		{"binary search", NewFeatureSet(catalog.FeatureBinarySearch), RuleBinarySearch, LabelLogarithmic, LabelConstant, CategoryBinarySearch},
		{"linear search", NewFeatureSet(catalog.FeatureLinearSearch), RuleLinearSearch, LabelLinear, LabelConstant, CategoryLinearSearch},
		{"tree traversal", NewFeatureSet(catalog.FeatureBinaryTree, catalog.FeatureTraversal), RuleTree, LabelLinear, LabelHeight, CategoryTreeTraversal},
		{"bst traversal", NewFeatureSet(catalog.FeatureBST, catalog.FeatureTraversal), RuleTree, LabelLinear, LabelHeight, CategoryTreeTraversal},
		{"binary tree", NewFeatureSet(catalog.FeatureBinaryTree), RuleTree, LabelHeight, LabelConstant, CategoryBinaryTree},
		{"bst wins over binary tree", NewFeatureSet(catalog.FeatureBinaryTree, catalog.FeatureBST), RuleTree, LabelHeight, LabelConstant, CategoryBinarySearchTree},
		{"traversal alone is not a tree", NewFeatureSet(catalog.FeatureTraversal), RuleDefault, LabelConstant, LabelConstant, CategoryBasicOperation},
		{"dp", NewFeatureSet(catalog.FeatureDP), RuleDynamicProg, LabelLinear, LabelLinear, CategoryDynamicProgramming},
		{"fibonacci", NewFeatureSet(catalog.FeatureFibonacci), RuleDynamicProg, LabelLinear, LabelLinear, CategoryDynamicProgramming},
		{"nested loop", NewFeatureSet(catalog.FeatureNestedLoop, catalog.FeatureLoop), RuleNestedLoop, LabelQuadratic, LabelConstant, CategoryBasicOperation},
		{"single loop", NewFeatureSet(catalog.FeatureLoop), RuleSingleLoop, LabelLinear, LabelConstant, CategoryBasicOperation},
		{"plain recursion", NewFeatureSet(catalog.FeatureRecursion), RuleRecursion, LabelExponential, LabelLinear, CategoryBasicOperation},
		{"divide and conquer alone", NewFeatureSet(catalog.FeatureDivideConquer), RuleDefault, LabelConstant, LabelConstant, CategoryBasicOperation},
		{"data structure alone", NewFeatureSet(catalog.FeatureDataStructure), RuleDefault, LabelConstant, LabelConstant, CategoryBasicOperation},
		{"nothing", NewFeatureSet(), RuleDefault, LabelConstant, LabelConstant, CategoryBasicOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rule := ClassifyWithRule(tt.features)
			assert.Equal(t, tt.rule, rule)
			assert.Equal(t, tt.time, v.Time)
			assert.Equal(t, tt.space, v.Space)
			assert.Equal(t, tt.category, v.Category)
			assert.NotEmpty(t, v.Explanation)
			assert.Equal(t, v, Classify(tt.features))
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name     string
		features FeatureSet
		category string
	}{
		{"merge beats quick", NewFeatureSet(catalog.FeatureMergeSort, catalog.FeatureQuickSort), CategoryMergeSort},
		{"quick beats heap", NewFeatureSet(catalog.FeatureQuickSort, catalog.FeatureHeapSort), CategoryQuickSort},
		{"heap beats bubble", NewFeatureSet(catalog.FeatureHeapSort, catalog.FeatureBubbleSort), CategoryHeapSort},
		{"sort beats binary search", NewFeatureSet(catalog.FeatureInsertionSort, catalog.FeatureBinarySearch), CategoryInsertionSort},
		{"binary beats linear search", NewFeatureSet(catalog.FeatureBinarySearch, catalog.FeatureLinearSearch), CategoryBinarySearch},
		{"search beats tree", NewFeatureSet(catalog.FeatureLinearSearch, catalog.FeatureBinaryTree), CategoryLinearSearch},
		{"tree beats dp", NewFeatureSet(catalog.FeatureBST, catalog.FeatureDP), CategoryBinarySearchTree},
		{"dp beats nested loop", NewFeatureSet(catalog.FeatureFibonacci, catalog.FeatureNestedLoop), CategoryDynamicProgramming},
		{"divide and conquer recursion beats everything", NewFeatureSet(
			catalog.FeatureRecursion, catalog.FeatureDivideConquer, catalog.FeatureQuickSort,
			catalog.FeatureBinarySearch, catalog.FeatureNestedLoop,
		), CategoryMergeSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, Classify(tt.features).Category)
		})
	}
}

func TestClassify_StructuralOrder(t *testing.T) {
	_, rule := ClassifyWithRule(NewFeatureSet(catalog.FeatureNestedLoop, catalog.FeatureLoop, catalog.FeatureRecursion))
	assert.Equal(t, RuleNestedLoop, rule)

	_, rule = ClassifyWithRule(NewFeatureSet(catalog.FeatureLoop, catalog.FeatureRecursion))
	assert.Equal(t, RuleSingleLoop, rule)
}

func TestClassify_ExactlyOneRuleDecides(t *testing.T) {
	// Walk every subset of a feature slice that touches each rule, and
	// check the reported rule is the first matching entry of the table.
	features := []catalog.Feature{
		catalog.FeatureMergeSort, catalog.FeatureQuickSort, catalog.FeatureBubbleSort,
		catalog.FeatureBinarySearch, catalog.FeatureBST, catalog.FeatureTraversal,
		catalog.FeatureDP, catalog.FeatureNestedLoop, catalog.FeatureLoop,
		catalog.FeatureRecursion, catalog.FeatureDivideConquer,
	}
	rules := DecisionRules()

	for mask := 0; mask < 1<<len(features); mask++ {
		fs := NewFeatureSet()
		for i, f := range features {
			if mask&(1<<i) != 0 {
				fs[f] = true
			}
		}

		_, got := ClassifyWithRule(fs)
		var want string
		for _, r := range rules {
			if r.Matches(fs) {
				want = r.Name
				break
			}
		}
		if got != want {
			t.Fatalf("mask %b: rule %q, first match %q", mask, got, want)
		}
	}
}

func TestDecisionRules_Order(t *testing.T) {
	rules := DecisionRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		RuleMergeSort, RuleQuickSort, RuleHeapSort, RuleSimpleSort,
		RuleBinarySearch, RuleLinearSearch, RuleTree, RuleDynamicProg,
		RuleNestedLoop, RuleSingleLoop, RuleRecursion, RuleDefault,
	}, names)

	rules[0] = DecisionRule{Name: "mutated"}
	assert.Equal(t, RuleMergeSort, DecisionRules()[0].Name)
}

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict()
	assert.Equal(t, Verdict{
		Time:        "O(1)",
		Space:       "O(1)",
		Explanation: "Constant time and space complexity.",
		Category:    "Basic Operation",
	}, v)
}
