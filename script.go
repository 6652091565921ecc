package toolbox

// Scripts evaluated in the export tab. Selectors are substituted with %q,
// which yields a valid JavaScript string literal.

// printSafeJS lays the element out at the page width in a plain white,
// unframed rendering and returns its height in CSS pixels, or -1 when the
// selector matches nothing.
const printSafeJS = `(function (sel, width) {
	const el = document.querySelector(sel);
	if (!el) return -1;
	const style = document.createElement("style");
	style.textContent = "html, body { background: #fff !important; margin: 0 !important; }";
	document.head.appendChild(style);
	el.style.backgroundColor = el.style.backgroundColor || "#fff";
	el.style.width = width + "px";
	el.style.maxWidth = "none";
	el.style.margin = "0";
	el.style.boxShadow = "none";
	el.style.borderRadius = "0";
	return el.getBoundingClientRect().height;
})(%q, %d)`

// taintedImagesJS removes cross-origin images that were not requested with
// CORS, since they cannot be drawn into an exportable raster, and returns
// their URLs.
const taintedImagesJS = `(function () {
	const out = [];
	for (const img of Array.from(document.images)) {
		if (img.hasAttribute("crossorigin")) continue;
		let u;
		try { u = new URL(img.src, location.href); } catch (e) { continue; }
		if (u.protocol === "data:" || u.protocol === "blob:" || u.protocol === "file:") continue;
		if (u.origin === location.origin) continue;
		out.push(img.src);
		img.remove();
	}
	return out;
})()`

// waitImagesJS resolves once every image has loaded or failed.
const waitImagesJS = `Promise.all(Array.from(document.images)
	.filter((img) => !img.complete)
	.map((img) => new Promise((resolve) => {
		img.addEventListener("load", resolve, { once: true });
		img.addEventListener("error", resolve, { once: true });
	}))).then(() => true)`

// measureJS returns the element's rendered height after images settled.
const measureJS = `(function (sel) {
	const el = document.querySelector(sel);
	return el ? el.getBoundingClientRect().height : -1;
})(%q)`
