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
	"context"
	"testing"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// =============================================================================
// Shared snippets
// =============================================================================

const jsBinarySearch = `function binarySearch(arr, target) {
  let left = 0;
  let right = arr.length - 1;
  while (left <= right) {
    let mid = left + Math.floor((right - left) / 2);
    if (arr[mid] === target) return mid;
    if (arr[mid] < target) left = mid + 1;
    else right = mid - 1;
  }
  return -1;
}`

const jsNestedLoops = `function sumPairs(values) {
  let total = 0;
  for (let i = 0; i < values.length; i++) {
    for (let j = 0; j < values.length; j++) {
      total += values[i] * values[j];
    }
  }
  return total;
}`

const jsMemoFib = `function fib(n, memo = {}) {
  if (n <= 1) return n;
  if (memo[n]) return memo[n];
  memo[n] = fib(n - 1, memo) + fib(n - 2, memo);
  return memo[n];
}`

const jsMergeSort = `function mergeSort(arr, left, right) {
  if (left >= right) return;
  const mid = Math.floor((left + right) / 2);
  mergeSort(arr, left, mid);
  mergeSort(arr, mid + 1, right);
  merge(arr, left, mid, right);
}`

const jsWordCount = `const counts = new Map();
for (const word of words) counts.set(word, (counts.get(word) || 0) + 1);`

const jsInorder = `class TreeNode {
  constructor(val) { this.val = val; this.left = null; this.right = null; }
}
function inorder(node) {
  if (!node) return;
  inorder(node.left);
  console.log(node.val);
  inorder(node.right);
}`

const pyNestedLoops = `def pair_sums(values):
    total = 0
    for a in values:
        for b in values:
            total += a * b
    return total`

const pyCountDown = `def count_down(n):
    if n == 0:
        return 0
    return count_down(n - 1)`

const pyLinearSearch = `def linear_search(items, target):
    for i, item in enumerate(items):
        if item == target:
            return i
    return -1`

const javaNestedLoops = `int pairSums(int[] values) {
    int total = 0;
    for (int a : values) {
        for (int b : values) {
            total += a * b;
        }
    }
    return total;
}`

const javaQuickSort = `void quickSort(int[] a, int lo, int hi) {
    if (lo < hi) {
        int p = partition(a, lo, hi);
        quickSort(a, lo, p - 1);
        quickSort(a, p + 1, hi);
    }
}`

const javaListCopy = `List<Integer> copy = new ArrayList<>();
for (int v : values) copy.add(v);`

const cppNestedLoops = `int pairSums(int values[], int n) {
    int total = 0;
    for (int i = 0; i < n; i++) {
        for (int j = 0; j < n; j++) {
            total += values[i] * values[j];
        }
    }
    return total;
}`

const cppBubbleSort = `void bubbleSort(int a[], int n) {
    for (int i = 0; i < n - 1; i++)
        for (int j = 0; j < n - i - 1; j++)
            if (a[j] > a[j + 1]) std::swap(a[j], a[j + 1]);
}`

const cppHeapSort = `void heapSort(int a[], int n) {
    for (int i = n / 2 - 1; i >= 0; i--) heapify(a, n, i);
}`

// =============================================================================
// Helpers
// =============================================================================

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	return c
}

func testAnalyzer(t *testing.T, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(testCatalog(t), opts...)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}
