package devserver

const samplePage = `<!DOCTYPE html>
<html><head><title>Download Kubernetes</title></head>
<body>
<h1>Download Kubernetes</h1>
<button id="remember-me">Remember me</button>
<table id="downloads">
<thead><tr><th>Version</th><th>OS</th><th>Arch</th><th>Binary</th></tr></thead>
<tbody>
<tr><td>v1.30.0</td><td>linux</td><td>amd64</td><td><a href="https://dl.k8s.io/v1.30.0/bin/linux/amd64/kubectl">kubectl</a></td></tr>
<tr><td>v1.30.0</td><td>linux</td><td>amd64</td><td><a href="https://dl.k8s.io/v1.30.0/bin/linux/amd64/kubeadm">kubeadm</a></td></tr>
<tr><td>v1.30.0</td><td>linux</td><td>amd64</td><td><a href="https://dl.k8s.io/v1.30.0/bin/linux/amd64/kubelet">kubelet</a></td></tr>
<tr><td>v1.30.0</td><td>darwin</td><td>arm64</td><td><a href="https://dl.k8s.io/v1.30.0/bin/darwin/arm64/kubectl">kubectl</a></td></tr>
<tr><td>v1.29.4</td><td>linux</td><td>arm64</td><td><a href="https://dl.k8s.io/v1.29.4/bin/linux/arm64/kubectl">kubectl</a></td></tr>
<tr><td>v1.29.4</td><td>windows</td><td>amd64</td><td><a href="https://dl.k8s.io/v1.29.4/bin/windows/amd64/kubectl.exe">kubectl.exe</a></td></tr>
</tbody>
</table>
</body></html>
`
