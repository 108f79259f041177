package k8s

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"
)

type patchRecord struct {
	namespace string
	name      string
	resource  string
	patchType types.PatchType
}

// setupTestClient returns a client whose dynamic patches are recorded and
// answered by a reactor, since the fake tracker cannot create objects
// through server-side apply.
func setupTestClient(t *testing.T, objects ...runtime.Object) (Client, *[]patchRecord) {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())

	var patches []patchRecord
	dynamicClient.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		p := action.(k8stesting.PatchAction)
		if p.GetName() == "explode" {
			return true, nil, errors.New("admission webhook denied the request")
		}
		patches = append(patches, patchRecord{
			namespace: p.GetNamespace(),
			name:      p.GetName(),
			resource:  p.GetResource().Resource,
			patchType: p.GetPatchType(),
		})
		return true, &unstructured.Unstructured{Object: map[string]any{}}, nil
	})

	return NewFromClients(clientset, dynamicClient, testMapper()), &patches
}

func testMapper() meta.RESTMapper {
	return restmapper.NewDiscoveryRESTMapper([]*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name:             "",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
					{Name: "serviceaccounts", Namespaced: true, Kind: "ServiceAccount"},
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
				},
			},
		},
	})
}

func TestApplyManifests(t *testing.T) {
	t.Parallel()
	c, patches := setupTestClient(t)

	manifest := []byte(`apiVersion: v1
kind: Namespace
metadata:
  name: lab
---
---
apiVersion: v1
kind: ServiceAccount
metadata:
  name: runner
  namespace: lab
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
`)

	n, err := c.ApplyManifests(context.Background(), manifest, FieldManager)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, *patches, 3)
	assert.Equal(t, patchRecord{name: "lab", resource: "namespaces", patchType: types.ApplyPatchType}, (*patches)[0])
	assert.Equal(t, "lab", (*patches)[1].namespace)
	assert.Equal(t, "default", (*patches)[2].namespace, "namespaced object without namespace lands in default")
}

func TestApplyManifests_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		manifest    string
		wantApplied int
		wantErr     string
	}{
		{
			name:     "invalid yaml",
			manifest: `{invalid yaml: [`,
			wantErr:  "failed to decode manifest document 0",
		},
		{
			name: "missing kind",
			manifest: `apiVersion: v1
metadata:
  name: test
`,
			wantErr: "Kind",
		},
		{
			name: "unknown kind",
			manifest: `apiVersion: example.com/v1
kind: Widget
metadata:
  name: w
`,
			wantErr: "failed to get REST mapping",
		},
		{
			name: "rejected object after applied object",
			manifest: `apiVersion: v1
kind: Namespace
metadata:
  name: lab
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: explode
  namespace: lab
`,
			wantApplied: 1,
			wantErr:     "failed to apply ConfigMap lab/explode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := setupTestClient(t)
			n, err := c.ApplyManifests(context.Background(), []byte(tt.manifest), FieldManager)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantApplied, n)
		})
	}
}

func TestApplyManifests_Empty(t *testing.T) {
	t.Parallel()
	c, patches := setupTestClient(t)

	n, err := c.ApplyManifests(context.Background(), []byte("---\n---\n"), FieldManager)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, *patches)
}

func node(name string, ready corev1.ConditionStatus) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: ready}},
		},
	}
}

func TestNodeStatus(t *testing.T) {
	t.Parallel()
	c, _ := setupTestClient(t,
		node("aks-system-0", corev1.ConditionTrue),
		node("aks-user-0", corev1.ConditionTrue),
		node("aks-user-1", corev1.ConditionFalse),
	)

	ready, total, err := c.NodeStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ready)
	assert.Equal(t, 3, total)
}

func TestWaitForAPIServer(t *testing.T) {
	t.Parallel()
	c, _ := setupTestClient(t)

	version, err := WaitForAPIServer(context.Background(), c, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}

type unreachable struct{ Client }

func (unreachable) ServerVersion(context.Context) (string, error) {
	return "", errors.New("connection refused")
}

func TestWaitForAPIServer_Timeout(t *testing.T) {
	t.Parallel()

	_, err := WaitForAPIServer(context.Background(), unreachable{}, 5*time.Millisecond, 30*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server did not respond")
}

func TestNewFromKubeconfig_Invalid(t *testing.T) {
	t.Parallel()
	_, err := NewFromKubeconfig([]byte("invalid kubeconfig content"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create REST config")

	_, err = NewFromKubeconfigFile("/nonexistent/kubeconfig")
	require.Error(t, err)
}
